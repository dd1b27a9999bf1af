package domain

// PropertyType classifies a property.
type PropertyType string

const (
	PropertyResidential PropertyType = "residential"
	PropertyCommercial  PropertyType = "commercial"
	PropertyIndustrial  PropertyType = "industrial"
	PropertyLand        PropertyType = "land"
)

// PropertyStatus is the lifecycle state of a property.
type PropertyStatus string

const (
	PropertyActive   PropertyStatus = "active"
	PropertyInactive PropertyStatus = "inactive"
)

// Property is a real-estate unit that gets inspected.
// InspectionCount is maintained atomically by the inspection repository and
// guards deletion.
type Property struct {
	ID              string         `bson:"_id"`
	CompanyID       string         `bson:"company_id"`
	ClientID        string         `bson:"client_id,omitempty"`
	Name            string         `bson:"name"`
	Address         string         `bson:"address"`
	City            string         `bson:"city"`
	State           string         `bson:"state,omitempty"`
	ZipCode         string         `bson:"zip_code,omitempty"`
	PropertyType    PropertyType   `bson:"property_type"`
	Status          PropertyStatus `bson:"status"`
	OwnerName       string         `bson:"owner_name,omitempty"`
	Notes           string         `bson:"notes,omitempty"`
	InspectionCount int64          `bson:"inspection_count"`
	Audit           `bson:",inline"`
}
