package entity

// Transition names a lifecycle operation on an appointment
type Transition string

const (
	TransitionConfirm    Transition = "confirm"
	TransitionComplete   Transition = "complete"
	TransitionCancel     Transition = "cancel"
	TransitionNoShow     Transition = "mark as no-show"
	TransitionReschedule Transition = "reschedule"
)

type statusEdge struct {
	From AppointmentStatus
	To   AppointmentStatus
}

// Every operation has exactly one legal source state.
var statusTransitions = map[Transition]statusEdge{
	TransitionConfirm:    {From: AppointmentStatusScheduled, To: AppointmentStatusInConsultation},
	TransitionComplete:   {From: AppointmentStatusInConsultation, To: AppointmentStatusCompleted},
	TransitionCancel:     {From: AppointmentStatusScheduled, To: AppointmentStatusCancelled},
	TransitionNoShow:     {From: AppointmentStatusScheduled, To: AppointmentStatusNoShow},
	TransitionReschedule: {From: AppointmentStatusScheduled, To: AppointmentStatusScheduled},
}

// Next returns the status reached by applying t to s, and whether t is allowed from s.
func (s AppointmentStatus) Next(t Transition) (AppointmentStatus, bool) {
	edge, ok := statusTransitions[t]
	if !ok || edge.From != s {
		return "", false
	}
	return edge.To, true
}

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusInConsultation, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusProcessing},
	PaymentStatusProcessing: {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted:  {PaymentStatusRefunded},
}

// CanTransitionTo checks the payment chain. FAILED and REFUNDED are terminal.
func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}
