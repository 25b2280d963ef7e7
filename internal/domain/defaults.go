package domain

import "github.com/shopspring/decimal"

// StarterCatalog is the catalog a fresh store starts with.
func StarterCatalog() []Product {
	return []Product{
		{
			ID:          "1",
			Name:        "Ultra-fast smartphone",
			Price:       decimal.NewFromInt(3500),
			Category:    CategoryElectronics,
			Image:       "https://picsum.photos/400/300?random=1",
			Description: "256 GB smartphone with a professional-grade camera.",
		},
		{
			ID:          "2",
			Name:        "Robot vacuum cleaner",
			Price:       decimal.NewFromInt(1200),
			Category:    CategoryHome,
			Image:       "https://picsum.photos/400/300?random=2",
			Description: "Automatic home cleaning with app control.",
		},
		{
			ID:          "3",
			Name:        "Smart car display",
			Price:       decimal.NewFromInt(800),
			Category:    CategoryCars,
			Image:       "https://picsum.photos/400/300?random=3",
			Description: "10-inch touch screen with Android Auto and CarPlay.",
		},
		{
			ID:          "4",
			Name:        "Noise-cancelling Bluetooth headphones",
			Price:       decimal.NewFromInt(450),
			Category:    CategoryElectronics,
			Image:       "https://picsum.photos/400/300?random=4",
			Description: "High sound quality with a long-lasting battery.",
		},
		{
			ID:          "5",
			Name:        "Granite cookware set",
			Price:       decimal.NewFromInt(950),
			Category:    CategoryHome,
			Image:       "https://picsum.photos/400/300?random=5",
			Description: "Complete non-stick set.",
		},
		{
			ID:          "6",
			Name:        "Tyre air pump",
			Price:       decimal.NewFromInt(250),
			Category:    CategoryCars,
			Image:       "https://picsum.photos/400/300?random=6",
			Description: "Portable, fast pump for every kind of car.",
		},
	}
}

// DefaultSettings is the configuration a fresh store starts with.
func DefaultSettings() Settings {
	return Settings{
		StoreName: "Maghreb Pro Store",
		Domain: DomainInfo{
			Nameservers: "ns1.hosting.com, ns2.hosting.com",
		},
	}
}
