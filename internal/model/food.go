package model

import "time"

// Food is an individually priced food item listed by a company,
// as opposed to a surprise Package.  Foods are sold through the
// same order commit protocol but cannot be soft-reserved; their
// stock is only checked and decremented at commit time.
type Food struct {
    ID          uint64    // foods.id
    CompanyID   uint64    // foods.company_id
    Name        string    // foods.name
    Description *string   // foods.description (nullable)
    PriceCents  uint32    // foods.price_cents
    Stock       uint32    // foods.stock
    IsAvailable bool      // foods.is_available
    ImageURL    *string   // foods.image_url (nullable)
    CreatedAt   time.Time // foods.created_at
    UpdatedAt   time.Time // foods.updated_at
}
