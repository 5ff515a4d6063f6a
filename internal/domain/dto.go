package domain

// WebhookRequest is the inbound envelope from the dialog platform.
// Only the fields this service reads are modeled.
type WebhookRequest struct {
	QueryResult QueryResult `json:"queryResult"`
}

type QueryResult struct {
	Intent         IntentRef       `json:"intent"`
	Parameters     Parameters      `json:"parameters"`
	OutputContexts []OutputContext `json:"outputContexts"`
}

type IntentRef struct {
	DisplayName string `json:"displayName"`
}

// Parameters carries the slot values extracted by the platform.
// "number" arrives as a list of numbers-or-strings positionally aligned
// with "food-items", or as a bare scalar on the tracking intent.
type Parameters struct {
	FoodItems []string `json:"food-items"`
	Number    any      `json:"number"`
}

// OutputContext names carry the session id:
// "projects/p/agent/sessions/{id}/contexts/ongoing-order".
type OutputContext struct {
	Name string `json:"name"`
}

type WebhookResponse struct {
	FulfillmentText string `json:"fulfillmentText"`
}
