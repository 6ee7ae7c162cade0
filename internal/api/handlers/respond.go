package handlers

import (
	"encoding/json"
	"net/http"
)

// fieldError is a single validation failure, matching the
// {errors:[{msg}]} body shape of the registration/login endpoints.
type fieldError struct {
	Msg string `json:"msg"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondMsg writes a {"msg": ...} body.
func respondMsg(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"msg": msg})
}

// respondErrors writes an {"errors":[{"msg":...}, ...]} body.
func respondErrors(w http.ResponseWriter, status int, msgs ...string) {
	errs := make([]fieldError, 0, len(msgs))
	for _, msg := range msgs {
		errs = append(errs, fieldError{Msg: msg})
	}
	respondJSON(w, status, map[string][]fieldError{"errors": errs})
}
