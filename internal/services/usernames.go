package services

import "math/rand"

// Word lists for generated usernames (adjective.animal, lowercase).
var usernameAdjectives = []string{
	"amber", "bold", "brave", "bright", "calm", "clever", "cosmic",
	"crimson", "daring", "eager", "fearless", "gentle", "golden",
	"happy", "hidden", "jolly", "keen", "lively", "lucky", "mellow",
	"nimble", "noble", "quiet", "rapid", "rustic", "silent", "silver",
	"smooth", "solar", "swift", "vivid", "wild", "witty", "zesty",
}

var usernameAnimals = []string{
	"badger", "bison", "crane", "dolphin", "falcon", "ferret", "fox",
	"gecko", "heron", "ibis", "jackal", "koala", "lemur", "lynx",
	"marmot", "mole", "otter", "owl", "panda", "panther", "puffin",
	"quail", "raven", "salmon", "seal", "sparrow", "stork", "tapir",
	"tiger", "toucan", "viper", "walrus", "weasel", "wolf", "wren",
}

// randomUsername produces a username like "swift.otter". Uniqueness is
// enforced by the database; callers retry on collision.
func randomUsername() string {
	adj := usernameAdjectives[rand.Intn(len(usernameAdjectives))]
	animal := usernameAnimals[rand.Intn(len(usernameAnimals))]
	return adj + "." + animal
}
