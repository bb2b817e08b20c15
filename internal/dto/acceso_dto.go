package dto

type VerificarAccesoRequest struct {
	Area     string `json:"area"     validate:"required,oneof=caja reportes inventario"`
	Password string `json:"password" validate:"required,min=1"`
}

type AccesoResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
	Area        string `json:"area"`
}
