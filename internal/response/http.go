package response

import "github.com/farxc/purchasing-kpi/internal/store"

type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	// Dataset is the upload the data was computed from.
	Dataset *store.Snapshot `json:"dataset,omitempty"`
	// Missing lists columns a request filter needed but the current
	// dataset does not have. The data is empty when it is set.
	Missing []string `json:"missing,omitempty"`
	Data    T        `json:"data,omitempty"`
}

func New[T any](data T, message string, dataset *store.Snapshot) *APIResponse[T] {
	return &APIResponse[T]{
		Success: true,
		Message: message,
		Dataset: dataset,
		Data:    data,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
