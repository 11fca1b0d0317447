package entity

// Status constants for Bill
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRefused  = "refused"
)

// Expense type constants for Bill. The list is open: the store accepts any
// non-empty type, these are the ones offered by the creation form.
const (
	TypeTransports    = "Transports"
	TypeRestaurants   = "Restaurants et bars"
	TypeHotel         = "Hôtel et logement"
	TypeOnlineService = "Services en ligne"
	TypeIT            = "IT et électronique"
	TypeEquipment     = "Equipement et matériel"
	TypeOfficeSupply  = "Fournitures de bureau"
)

// ExpenseTypes lists the expense types in form order
var ExpenseTypes = []string{
	TypeTransports,
	TypeRestaurants,
	TypeHotel,
	TypeOnlineService,
	TypeIT,
	TypeEquipment,
	TypeOfficeSupply,
}

// User type constants for Session
const (
	UserTypeEmployee = "Employee"
	UserTypeAdmin    = "Admin"
)

// Route identifiers understood by the host navigation function
const (
	RouteBills   = "#employee/bills"
	RouteNewBill = "#employee/bill/new"
)

// DefaultPct is the VAT percentage used when the form value is absent or not an integer
const DefaultPct = 20

// DateLayout is the storage layout of Bill.Date
const DateLayout = "2006-01-02"

// MsgInvalidFileType is shown inline when a receipt file is rejected
const MsgInvalidFileType = "Seuls les fichiers jpg, jpeg, png, gif et pdf sont acceptés"
