package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Orders() OrderRepository
	Offers() OfferRepository
	Providers() ProviderRepository
	DriverProfiles() DriverProfileRepository
	Payouts() PayoutRepository
	Payments() PaymentRepository
	Audit() AuditRepository
}
