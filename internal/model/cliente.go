package model

// Cliente is read-only for this service; customer CRUD lives elsewhere.
type Cliente struct {
	ID       int64   `json:"id"`
	Nombre   string  `json:"nombre"`
	Email    *string `json:"email,omitempty"`
	Telefono *string `json:"telefono,omitempty"`
	Nivel    *string `json:"nivel,omitempty"`
}
