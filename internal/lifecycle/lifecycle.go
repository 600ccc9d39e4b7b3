// Package lifecycle описывает машины состояний сущностей: допустимые статусы,
// переходы и производные поля. Каждый именованный переход сам сообщает, какое
// изменение он произвел, чтобы слой рассылки не выводил событие из diff документа.
package lifecycle

// Change - семантический вид изменения, произведенного переходом
type Change string

const (
	ChangeNone Change = ""

	ChangeIncidentReported Change = "incident.reported"
	ChangeIncidentVerified Change = "incident.verified"
	ChangeIncidentAdvanced Change = "incident.advanced"

	ChangeRequestCreated Change = "request.created"
	ChangeRequestClaimed Change = "request.claimed"
	ChangeRequestUpdated Change = "request.updated"
	ChangeRequestDeleted Change = "request.deleted"

	ChangeTaskAssigned  Change = "task.assigned"
	ChangeTaskResponded Change = "task.responded"
	ChangeTaskCompleted Change = "task.completed"

	ChangeAlertCreated Change = "alert.created"
	ChangeAlertUpdated Change = "alert.updated"
	ChangeAlertDeleted Change = "alert.deleted"

	ChangeResourceCreated Change = "resource.created"
	ChangeResourceUpdated Change = "resource.updated"
	ChangeResourceDeleted Change = "resource.deleted"
)
