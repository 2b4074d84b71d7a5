package checkout

type GeneratePixResponse struct {
	Success       bool    `json:"success"`
	PixCode       string  `json:"pixCode"`
	PixQRCode     string  `json:"pixQrCode"`
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transactionId"`
}

func NewGeneratePixResponse(tx *Transaction) GeneratePixResponse {
	return GeneratePixResponse{
		Success:       true,
		PixCode:       tx.PixCode,
		PixQRCode:     tx.QRImage,
		OrderID:       tx.OrderID,
		Amount:        tx.Amount.InexactFloat64(),
		TransactionID: tx.ID,
	}
}

type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
