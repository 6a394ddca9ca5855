package api

// Page holds the static text of the chat page.
type Page struct {
	Title        string
	Icon         string
	Welcome      string
	Capabilities []string
	Placeholder  string
	PoweredBy    []string
	Examples     []string
}

// DefaultPage is the customer-support page.
func DefaultPage() Page {
	return Page{
		Title:   "Customer Support Agent",
		Icon:    "🤖",
		Welcome: "Welcome to our AI-powered customer support agent! I can help you with:",
		Capabilities: []string{
			"Order status and details",
			"Product information",
			"Shipping and delivery times",
			"Returns and cancellations",
			"General FAQs",
		},
		Placeholder: "How can I help you today?",
		PoweredBy: []string{
			"Langflow for Agentic orchestration",
			"OpenAI for natural language understanding",
			"Astra DB for knowledge storage and retrieval",
			"Go and gin for the user interface",
		},
		Examples: []string{
			"What's the shipping status of order 1001?",
			"What was ordered with 1003?",
			"What date will order 1004 arrive?",
			"How can I cancel order 1001?",
			"What is your shipping policy?",
		},
	}
}
