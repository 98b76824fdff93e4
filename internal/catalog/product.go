package catalog

// Product is a catalog entry. Stock is the only field mutated after
// creation, always via Repository.UpdateStock.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock"`
}

// sampleProducts is the built-in catalog used to seed an empty store and to
// keep the storefront browsable when the store is unreachable.
var sampleProducts = []Product{
	{
		ID:          1,
		Name:        "Smartphone X12 Pro",
		Price:       699.99,
		Description: "Flagship smartphone with a 6.5-inch 120Hz AMOLED display, 108MP quad-camera system with 8K video, octa-core processor, 8GB RAM, 256GB storage, 5000mAh battery with fast charging and IP68 water resistance.",
		Image:       "/images/smartphone.jpg",
		Stock:       50,
	},
	{
		ID:          2,
		Name:        "UltraBook Pro 16",
		Price:       1299.99,
		Description: "16-inch 4K productivity laptop with 100% Adobe RGB coverage, 16-core processor with dedicated graphics, 32GB RAM, 1TB SSD, backlit keyboard, up to 12 hours of battery and Thunderbolt 4 connectivity.",
		Image:       "/images/laptop.jpg",
		Stock:       30,
	},
	{
		ID:          3,
		Name:        "SoundWave Elite Headphones",
		Price:       199.99,
		Description: "Wireless over-ear headphones with active noise cancellation, custom 40mm drivers, memory foam cushions, touch controls, multipoint Bluetooth 5.2, 30-hour battery life and fast charging.",
		Image:       "/images/headphones.jpg",
		Stock:       100,
	},
	{
		ID:          4,
		Name:        "FitTech Pro Smartwatch",
		Price:       249.99,
		Description: "Fitness smartwatch tracking 40+ workout types with built-in GPS, continuous heart rate and blood oxygen monitoring, sleep analysis, 1.4-inch always-on display, 5ATM water resistance and 7-day battery life.",
		Image:       "/images/smartwatch.jpg",
		Stock:       45,
	},
	{
		ID:          5,
		Name:        "SlimTab Ultra",
		Price:       499.99,
		Description: "10.9-inch Liquid Retina tablet with True Tone, desktop-class chip, precision stylus support with pressure sensitivity, 128GB storage, quad speakers, 12MP cameras and up to 10 hours of battery at just 460g.",
		Image:       "/images/tablet.jpg",
		Stock:       25,
	},
}

// SampleCatalog returns a copy of the built-in fallback catalog.
func SampleCatalog() []Product {
	products := make([]Product, len(sampleProducts))
	copy(products, sampleProducts)
	return products
}

func sampleByID(id int) (*Product, bool) {
	for _, p := range sampleProducts {
		if p.ID == id {
			product := p
			return &product, true
		}
	}
	return nil, false
}
