package domain

// RequestStatus is the closed set of lifecycle states. The database stores
// the enum value; Indonesian display labels live in StatusLabel and are only
// used at the boundary.
type RequestStatus string

const (
	StatusAwaitingVerification RequestStatus = "awaiting_verification"
	StatusAwaitingPayment      RequestStatus = "awaiting_payment"
	StatusRevision             RequestStatus = "revision"
	StatusRejected             RequestStatus = "rejected"
	StatusProcessing           RequestStatus = "processing"
	StatusFieldProcessing      RequestStatus = "field_processing"
	StatusFieldReturned        RequestStatus = "field_returned"
	StatusAwaitingFinalization RequestStatus = "awaiting_finalization"
	StatusReadyForPickup       RequestStatus = "ready_for_pickup"
	StatusShipped              RequestStatus = "shipped"
	StatusCompleted            RequestStatus = "completed"
	StatusDelivered            RequestStatus = "delivered"
)

// StatusLabel maps enum values to the labels shown to users and embedded in
// notification emails.
var StatusLabel = map[RequestStatus]string{
	StatusAwaitingVerification: "Menunggu Verifikasi",
	StatusAwaitingPayment:      "Menunggu Pembayaran",
	StatusRevision:             "Perlu Revisi",
	StatusRejected:             "Ditolak",
	StatusProcessing:           "Diproses",
	StatusFieldProcessing:      "Proses Lapangan",
	StatusFieldReturned:        "Kembali dari Lapangan",
	StatusAwaitingFinalization: "Menunggu Finalisasi",
	StatusReadyForPickup:       "Siap Diambil",
	StatusShipped:              "Dikirim ke Pelanggan",
	StatusCompleted:            "Selesai",
	StatusDelivered:            "Diterima Pelanggan",
}

// transitions enumerates every legal status edge. Anything not listed here
// is rejected before any row is touched.
var transitions = map[RequestStatus][]RequestStatus{
	StatusAwaitingVerification: {StatusAwaitingPayment, StatusRevision, StatusRejected},
	StatusAwaitingPayment:      {StatusProcessing},
	StatusRevision:             {StatusAwaitingVerification},
	StatusRejected:             {StatusAwaitingVerification},
	StatusProcessing:           {StatusFieldProcessing},
	StatusFieldProcessing:      {StatusFieldReturned, StatusAwaitingFinalization, StatusReadyForPickup},
	StatusFieldReturned:        {StatusAwaitingFinalization, StatusReadyForPickup, StatusShipped, StatusCompleted},
	StatusAwaitingFinalization: {StatusShipped, StatusCompleted},
	StatusReadyForPickup:       {StatusCompleted},
	StatusShipped:              {StatusDelivered},
	StatusCompleted:            nil,
	StatusDelivered:            nil,
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no action may move the request further.
func IsTerminal(s RequestStatus) bool {
	next, known := transitions[s]
	return known && len(next) == 0
}

// IsValidStatus reports whether s belongs to the closed status set.
func IsValidStatus(s RequestStatus) bool {
	_, ok := transitions[s]
	return ok
}

// fieldLocked is the set of states a field worker may no longer touch.
var fieldLocked = map[RequestStatus]bool{
	StatusAwaitingFinalization: true,
	StatusReadyForPickup:       true,
	StatusCompleted:            true,
	StatusShipped:              true,
	StatusDelivered:            true,
}

// FieldLocked reports whether field-staff updates are rejected for s.
func FieldLocked(s RequestStatus) bool {
	return fieldLocked[s]
}

// FieldUpdatable is the constrained set a field worker may set.
var FieldUpdatable = []RequestStatus{
	StatusFieldReturned,
	StatusAwaitingFinalization,
	StatusReadyForPickup,
}

// FieldAuditAction maps a field status update to its audit action code.
func FieldAuditAction(to RequestStatus) AuditAction {
	switch to {
	case StatusFieldProcessing:
		return AuditInProgress
	case StatusFieldReturned, StatusAwaitingFinalization:
		return AuditCompleted
	case StatusReadyForPickup, StatusShipped, StatusCompleted:
		return AuditDelivered
	default:
		return AuditInProgress
	}
}
