package constants

type TaskStatus string

const (
	TaskOpen       TaskStatus = "OPEN"
	TaskAccepted   TaskStatus = "ACCEPTED"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskConfirmed  TaskStatus = "CONFIRMED"
	TaskCancelled  TaskStatus = "CANCELLED"
	TaskDisputed   TaskStatus = "DISPUTED"
)

// Terminal reports whether no further lifecycle transitions are accepted.
func (s TaskStatus) Terminal() bool {
	return s == TaskConfirmed || s == TaskCancelled || s == TaskDisputed
}

type PricingType string

const (
	PricingFixed  PricingType = "FIXED"
	PricingHourly PricingType = "HOURLY"
)

type TaskCategory string

const (
	CategoryPersonalErrands   TaskCategory = "PERSONAL_ERRANDS"
	CategoryProfessionalTasks TaskCategory = "PROFESSIONAL_TASKS"
	CategoryHouseholdHelp     TaskCategory = "HOUSEHOLD_HELP"
	CategoryMicroGigs         TaskCategory = "MICRO_GIGS"
	CategoryDelivery          TaskCategory = "DELIVERY"
	CategoryCleaning          TaskCategory = "CLEANING"
	CategoryRepairMaintenance TaskCategory = "REPAIR_MAINTENANCE"
	CategoryShopping          TaskCategory = "SHOPPING"
	CategoryAdministrative    TaskCategory = "ADMINISTRATIVE"
	CategoryOther             TaskCategory = "OTHER"
)
