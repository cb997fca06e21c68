package services

// ServiceContainer holds all the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Payment PaymentSvcFacade
	Report  ReportSvcFacade
}
