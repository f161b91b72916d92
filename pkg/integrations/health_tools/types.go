package health_tools

import "github.com/svasthya/svasthya/pkg/domain"

type BookAppointmentArgs struct {
	DoctorName string `json:"doctorName"`
	Date       string `json:"date"`
	Reason     string `json:"reason"`
}

type BookAppointmentResult struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	AppointmentID string `json:"appointmentId"`
}

type SetMedicationReminderArgs struct {
	MedicineName string `json:"medicineName"`
	Time         string `json:"time"`
	Frequency    string `json:"frequency,omitempty"`
}

type SetMedicationReminderResult struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	ReminderID string `json:"reminderId"`
}

type GetPatientRecordsArgs struct {
	PatientID string `json:"patientId,omitempty"`
}

type GetPatientRecordsResult struct {
	PatientName  string        `json:"patientName"`
	Age          int           `json:"age"`
	Conditions   []string      `json:"conditions"`
	LastVisit    string        `json:"lastVisit"`
	RecentVitals domain.Vitals `json:"recentVitals"`
}
