package health_tools

import (
	"github.com/svasthya/svasthya/pkg/ai-sdk/tool"
)

const (
	ToolBookAppointment       = "bookAppointment"
	ToolSetMedicationReminder = "setMedicationReminder"
	ToolGetPatientRecords     = "getPatientRecords"
)

var (
	BookAppointmentDefinition = tool.Definition{
		Name:        ToolBookAppointment,
		Description: "Book a medical appointment with a specific doctor.",
		Parameters: []tool.Parameter{
			{
				Name:        "doctorName",
				Type:        tool.TypeString,
				Description: "Name of the doctor (e.g., Dr. Smith)",
				Required:    true,
			},
			{
				Name:        "date",
				Type:        tool.TypeString,
				Description: "Date and time of the appointment (ISO string or human readable)",
				Required:    true,
			},
			{
				Name:        "reason",
				Type:        tool.TypeString,
				Description: "Reason for the visit",
				Required:    true,
			},
		},
	}

	SetMedicationReminderDefinition = tool.Definition{
		Name:        ToolSetMedicationReminder,
		Description: "Set a reminder for taking medication.",
		Parameters: []tool.Parameter{
			{
				Name:        "medicineName",
				Type:        tool.TypeString,
				Description: "Name of the medicine",
				Required:    true,
			},
			{
				Name:        "time",
				Type:        tool.TypeString,
				Description: "Time to take the medicine",
				Required:    true,
			},
			{
				Name:        "frequency",
				Type:        tool.TypeString,
				Description: "How often to take it (e.g., daily, twice a day)",
			},
		},
	}

	GetPatientRecordsDefinition = tool.Definition{
		Name:        ToolGetPatientRecords,
		Description: "Retrieve the health records of the current patient.",
		Parameters: []tool.Parameter{
			{
				Name:        "patientId",
				Type:        tool.TypeString,
				Description: "ID of the patient (optional, defaults to current user)",
			},
		},
	}
)

// Definitions returns the health tool manifest in a stable order.
func Definitions() []tool.Definition {
	return []tool.Definition{
		BookAppointmentDefinition,
		SetMedicationReminderDefinition,
		GetPatientRecordsDefinition,
	}
}
