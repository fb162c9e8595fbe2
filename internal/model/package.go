package model

import "time"

// Package is a sellable surprise bag of surplus food listed by a
// company.  Stock is the number of bags still for sale; it is
// decremented only through the order commit protocol's conditional
// update and therefore never goes negative.  RatingAvg is the mean
// of all ratings whose order contains this package, rounded to one
// decimal place, and is recomputed whenever a new rating lands.
//
// Fields:
//  ID                 – primary key identifier.
//  CompanyID          – owning company (users.id with role COMPANY).
//  Name               – listing title.
//  Description        – optional free-text description.
//  OriginalPriceCents – pre-discount price in cents.
//  PriceCents         – discounted sale price in cents.
//  Stock              – remaining units, always >= 0.
//  IsAvailable        – whether the listing is visible to customers.
//  ImageURL           – optional uploaded image location.
//  RatingAvg          – mean rating, one decimal place.
//  RatingCount        – number of ratings behind RatingAvg.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Package struct {
    ID                 uint64    // packages.id
    CompanyID          uint64    // packages.company_id
    Name               string    // packages.name
    Description        *string   // packages.description (nullable)
    OriginalPriceCents uint32    // packages.original_price_cents
    PriceCents         uint32    // packages.price_cents
    Stock              uint32    // packages.stock
    IsAvailable        bool      // packages.is_available
    ImageURL           *string   // packages.image_url (nullable)
    RatingAvg          float64   // packages.rating_avg
    RatingCount        uint32    // packages.rating_count
    CreatedAt          time.Time // packages.created_at
    UpdatedAt          time.Time // packages.updated_at
}
