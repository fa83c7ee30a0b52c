package handlers

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Catalog *CatalogHandler
	Quotes  *QuoteHandler
	Booking *BookingHandler
	Webhook *WebhookHandler
	Admin   *AdminHandler
	Media   *MediaHandler
	Health  *HealthHandler
}
