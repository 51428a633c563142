package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Skip  int `query:"skip"`
	Limit int `query:"limit"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
