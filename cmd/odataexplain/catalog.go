package main

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nlstn/go-odata-uriparser/edm"
)

// Category groups products.
type Category struct {
	ID          uint      `json:"ID" gorm:"primaryKey" odata:"key"`
	Name        string    `json:"Name" gorm:"not null;unique"`
	Description string    `json:"Description"`
	Products    []Product `json:"Products,omitempty" gorm:"foreignKey:CategoryID"`
}

// Product is the sample entity explained by the tool.
type Product struct {
	ID          uint      `json:"ID" gorm:"primaryKey" odata:"key"`
	Name        string    `json:"Name" gorm:"not null"`
	Description string    `json:"Description"`
	Price       float64   `json:"Price" gorm:"not null"`
	Stock       int32     `json:"Stock"`
	CategoryID  *uint     `json:"CategoryID"`
	Category    *Category `json:"Category,omitempty" gorm:"foreignKey:CategoryID"`
	Tags        []string  `json:"Tags" gorm:"serializer:json"`
	CreatedAt   time.Time `json:"CreatedAt"`
}

// catalog binds entity set names to the Go types backing them.
type catalog struct {
	model *edm.Model
	sets  map[string]func() interface{}
}

func newCatalog() (*catalog, error) {
	model, err := edm.NewBuilder("Catalog").
		EntitySet("Products", &Product{}).
		EntitySet("Categories", &Category{}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}
	return &catalog{
		model: model,
		sets: map[string]func() interface{}{
			"Products":   func() interface{} { return &[]Product{} },
			"Categories": func() interface{} { return &[]Category{} },
		},
	}, nil
}

// destination returns a pointer to an empty slice of the set's type.
func (c *catalog) destination(set string) (interface{}, bool) {
	newDest, ok := c.sets[set]
	if !ok {
		return nil, false
	}
	return newDest(), true
}

func sampleCategories() []Category {
	return []Category{
		{ID: 1, Name: "Electronics", Description: "Electronic devices and accessories"},
		{ID: 2, Name: "Kitchen", Description: "Kitchen appliances and tableware"},
		{ID: 3, Name: "Furniture", Description: "Home and office furniture"},
	}
}

func sampleProducts() []Product {
	electronics, kitchen, furniture := uint(1), uint(2), uint(3)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 9, 0, 0, 0, time.UTC) }

	return []Product{
		{ID: 1, Name: "Laptop", Description: "High-performance laptop for developers", Price: 999.99, Stock: 12, CategoryID: &electronics, Tags: []string{"new", "portable"}, CreatedAt: day(2024, time.March, 1)},
		{ID: 2, Name: "Wireless Mouse", Description: "Ergonomic wireless mouse", Price: 29.99, Stock: 140, CategoryID: &electronics, Tags: []string{"portable"}, CreatedAt: day(2023, time.November, 20)},
		{ID: 3, Name: "Coffee Mug", Description: "Ceramic coffee mug with company logo", Price: 15.50, Stock: 0, CategoryID: &kitchen, Tags: []string{}, CreatedAt: day(2022, time.June, 5)},
		{ID: 4, Name: "Office Chair", Description: "Comfortable ergonomic office chair", Price: 249.99, Stock: 7, CategoryID: &furniture, Tags: []string{"new"}, CreatedAt: day(2024, time.January, 15)},
		{ID: 5, Name: "Smartphone", Description: "Latest model smartphone", Price: 799.00, Stock: 25, CategoryID: &electronics, Tags: []string{"new", "5g"}, CreatedAt: day(2024, time.May, 30)},
	}
}

// seed migrates the sample tables and fills them when empty.
func seed(db *gorm.DB) error {
	if err := db.AutoMigrate(&Category{}, &Product{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	var count int64
	if err := db.Model(&Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	categories := sampleCategories()
	if err := db.Create(&categories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	products := sampleProducts()
	if err := db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	return nil
}
