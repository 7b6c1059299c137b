package handlers

import "encoding/json"

// errorResponse представляет структуру ответа с ошибкой
type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// response представляет структуру успешного ответа
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// syncSuccessResponse тело ответа успешной синхронизации; productCount присутствует всегда
type syncSuccessResponse struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	ShopDomain      string          `json:"shopDomain"`
	ProductCount    int             `json:"productCount"`
	SkippedProducts int             `json:"skippedProducts,omitempty"`
	APIResult       json.RawMessage `json:"apiResult"`
}
