// Package chat answers storefront questions by keyword matching. Pure
// string lookup, no state, no model.
package chat

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength bounds accepted input.
const MaxMessageLength = 1000

var (
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = errors.New("message too long")
)

type rule struct {
	keywords []string
	reply    string
}

// Matching order matters: product-type mentions first, then comparison,
// price, stock and spec questions, then the service phrase dictionary, then
// a final pass of superlative/gift/work keywords.
var productRules = []rule{
	{[]string{"tablet", "ipad"}, "Our tablets are perfect for work and entertainment! The SlimTab Ultra offers excellent performance for creative tasks. Need help choosing the right size or storage?"},
	{[]string{"laptop", "computer"}, "Our laptops range from budget-friendly options to high-performance machines. For work: business laptops with long battery life. For students: lightweight and affordable. What's your main use case?"},
	{[]string{"phone", "mobile", "smartphone"}, "We have smartphones for every need! Premium flagships with the best cameras, and great-value options. Are you looking for specific features like camera quality, battery life, or gaming performance?"},
	{[]string{"headphone", "earphone", "audio"}, "Our audio products include wireless headphones with noise cancelling for music and clear microphones for calls. What's your priority?"},
	{[]string{"accessory", "accessories"}, "We have all the accessories you need! Phone cases, laptop bags, chargers, cables, stands, and more. What device are you looking to accessorize?"},
	{[]string{"compare", "difference", "vs"}, "I can help compare our products! Tell me which specific items you're considering, and I'll highlight the key differences in features, price, and performance to help you decide."},
	{[]string{"price", "cost", "budget", "cheap", "affordable"}, "Our products are competitively priced! We have options for every budget. Need recommendations within a specific price range? Just let me know your budget!"},
	{[]string{"stock", "available", "in stock"}, "Most of our products are in stock and ready to ship! You can see real-time availability on each product page. Need something urgently? I can help you find similar in-stock alternatives."},
	{[]string{"spec", "feature", "detail"}, "I can help you understand product specifications! Each product page has detailed specs, but feel free to ask about specific features like battery life, storage, camera quality, or performance."},
}

var serviceReplies = map[string]string{
	"return":   "Returns accepted within 30 days with receipt. Free return shipping on all orders!",
	"shipping": "Free shipping on orders over $50. Express delivery available. Standard shipping: 3-5 business days.",
	"payment":  "We accept all major credit cards, PayPal, Apple Pay, and Buy Now Pay Later options.",
	"warranty": "1-year manufacturer warranty on all products. Extended warranties available at checkout.",
	"track":    "Track your order in the \"My Orders\" section or use the tracking number we emailed you.",
	"cancel":   "Orders can be cancelled within 1 hour of placement. Contact us immediately for assistance!",
	"hello":    "Hi! I'm your ShopMate assistant. I can help with product recommendations, comparisons, and shopping questions!",
	"help":     "I can help with: product recommendations, comparisons, specifications, pricing, shipping, returns, and order tracking. What do you need?",
	"support":  "Our customer support team is here to help! For complex questions, email us at support@shopmate.com",
}

// servicePhrases fixes the lookup order of serviceReplies.
var servicePhrases = []string{
	"return", "shipping", "payment", "warranty", "track", "cancel", "hello", "help", "support",
}

var suggestionRules = []rule{
	{[]string{"best", "top"}, "Our top-rated products: Smartphone X12 Pro for photography, UltraBook Pro 16 for productivity, SoundWave Elite for audio lovers, FitTech Pro for fitness, and SlimTab Ultra for creativity. What's your priority?"},
	{[]string{"new", "latest"}, "Check out our newest arrivals! The Smartphone X12 Pro has the newest camera system, and the UltraBook Pro 16 has the latest processor generation. What type of latest tech interests you?"},
	{[]string{"gift", "present"}, "Perfect gifts for tech lovers! The UltraBook Pro or Smartphone X12 Pro for power users, the SlimTab Ultra or SoundWave Elite headphones for creatives, and the FitTech Pro Smartwatch for fitness enthusiasts. What's your budget range?"},
	{[]string{"work", "office", "business"}, "For work and business: the UltraBook Pro 16 offers 12-hour battery and powerful performance, the Smartphone X12 Pro professional photography, and the SoundWave Elite clear calls. Need specific work requirements?"},
}

const defaultReply = "I can help with product recommendations, comparisons, pricing, shipping, and returns. Try asking \"best laptop for work\" or \"gift ideas\". For detailed technical questions, email support@shopmate.com - we'll respond within 24 hours!"

// Respond returns the canned reply for the first matching keyword category,
// or a fixed default.
func Respond(message string) (string, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return "", ErrMessageTooLong
	}

	lower := strings.ToLower(message)

	for _, r := range productRules {
		if containsAny(lower, r.keywords) {
			return r.reply, nil
		}
	}
	for _, phrase := range servicePhrases {
		if strings.Contains(lower, phrase) {
			return serviceReplies[phrase], nil
		}
	}
	for _, r := range suggestionRules {
		if containsAny(lower, r.keywords) {
			return r.reply, nil
		}
	}
	return defaultReply, nil
}

// Recommendation is an accessory suggestion shown on product pages.
type Recommendation struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Recommendations returns the fixed accessory list for any product.
func Recommendations(productID int) []Recommendation {
	return []Recommendation{
		{ID: 1, Name: "Wireless Mouse", Price: 29.99},
		{ID: 2, Name: "USB-C Hub", Price: 49.99},
		{ID: 3, Name: "Laptop Stand", Price: 39.99},
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
