package http

import (
	"net/http"

	"github.com/frostmag155/shop-frontend/pkg/httputil"
)

// ContentHandler serves the storefront's static informational content:
// store details, FAQ entries, and contacts. The content is compiled in; the
// catalog CacheControl middleware makes these responses cacheable.
type ContentHandler struct{}

// NewContentHandler creates a new content handler.
func NewContentHandler() *ContentHandler {
	return &ContentHandler{}
}

// StoreInfo is the about-the-store payload.
type StoreInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Hours       string   `json:"hours"`
	Services    []string `json:"services"`
}

// FAQEntry is a single question/answer pair.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Contacts is the contact-details payload.
type Contacts struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Telegram string `json:"telegram"`
	Address  string `json:"address"`
}

var storeInfo = StoreInfo{
	Name:        "iStore",
	Description: "Authorized reseller of Apple devices and accessories.",
	Address:     "Moscow, Tverskaya st. 1",
	Hours:       "Mon-Sun 10:00-22:00",
	Services:    []string{"trade-in", "setup assistance", "extended warranty"},
}

var faqEntries = []FAQEntry{
	{
		Question: "How long does delivery take?",
		Answer:   "Courier delivery within the city arrives in 1-2 business days. Pickup orders are ready the same day.",
	},
	{
		Question: "Can I pay on delivery?",
		Answer:   "Yes, both card and cash payment are accepted on delivery or at pickup.",
	},
	{
		Question: "Are the devices official?",
		Answer:   "All devices are new, sealed, and covered by the manufacturer's warranty for the listed region.",
	},
	{
		Question: "What does the country code on a product mean?",
		Answer:   "It is the region the device was produced for. Regional models differ in details like eSIM support or camera shutter sound; see the product page for specifics.",
	},
}

var contacts = Contacts{
	Phone:    "+7 (495) 000-00-00",
	Email:    "support@istore.example",
	Telegram: "@istore_support",
	Address:  "Moscow, Tverskaya st. 1",
}

// StoreInfo handles GET /api/v1/content/store
func (h *ContentHandler) StoreInfo(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: storeInfo})
}

// FAQ handles GET /api/v1/content/faq
func (h *ContentHandler) FAQ(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: faqEntries})
}

// Contacts handles GET /api/v1/content/contacts
func (h *ContentHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: contacts})
}
