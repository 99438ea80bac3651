package dto

// PushSubscriptionKeys carries the client encryption keys of a push
// subscription descriptor.
type PushSubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required,max=255"`
	Auth   string `json:"auth" validate:"required,max=255"`
}

// PushSubscribeRequest registers a device endpoint for the caller.
type PushSubscribeRequest struct {
	Endpoint string               `json:"endpoint" validate:"required,url,max=500"`
	Keys     PushSubscriptionKeys `json:"keys" validate:"required"`
}

// PushUnsubscribeRequest removes a registered endpoint.
type PushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,max=500"`
}

// VAPIDKeyResponse exposes the server's public application key.
type VAPIDKeyResponse struct {
	PublicKey string `json:"public_key"`
}
