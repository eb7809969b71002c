package mail

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

const unknown = "Unknown"

// AppointmentDetails describes the change announced to the patient.
type AppointmentDetails struct {
	PreviousDate string `json:"previousDate"`
	NewDate      string `json:"newDate"`
	Doctor       string `json:"doctor"`
	Department   string `json:"department"`
}

func (d AppointmentDetails) withDefaults() AppointmentDetails {
	for _, f := range []*string{&d.PreviousDate, &d.NewDate, &d.Doctor, &d.Department} {
		if strings.TrimSpace(*f) == "" {
			*f = unknown
		}
	}
	return d
}

// Content holds both renderings of an email body.
type Content struct {
	Text string
	HTML string
}

type templateData struct {
	PatientID    string
	Hospital     string
	PreviousDate string
	NewDate      string
	Doctor       string
	Department   string
}

var textTemplate = texttemplate.Must(texttemplate.New("appointment.txt").Parse(`Dear Patient {{.PatientID}},

Your appointment has been rescheduled due to urgent medical considerations.

Previous Appointment: {{.PreviousDate}}
New Appointment: {{.NewDate}}
Doctor: {{.Doctor}}
Department: {{.Department}}

Please contact the hospital if you have any questions or concerns.

Best regards,
{{.Hospital}}
`))

var htmlTemplate = htmltemplate.Must(htmltemplate.New("appointment.html").Parse(`<html>
<head></head>
<body>
  <p>Dear Patient {{.PatientID}},</p>

  <p>Your appointment has been rescheduled due to urgent medical considerations.</p>

  <table style="border-collapse: collapse; width: 100%; border: 1px solid #ddd;">
    <tr style="background-color: #f2f2f2;">
      <th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Previous Appointment</th>
      <td style="padding: 8px; text-align: left; border: 1px solid #ddd;">{{.PreviousDate}}</td>
    </tr>
    <tr>
      <th style="padding: 8px; text-align: left; border: 1px solid #ddd;">New Appointment</th>
      <td style="padding: 8px; text-align: left; border: 1px solid #ddd;">{{.NewDate}}</td>
    </tr>
    <tr style="background-color: #f2f2f2;">
      <th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Doctor</th>
      <td style="padding: 8px; text-align: left; border: 1px solid #ddd;">{{.Doctor}}</td>
    </tr>
    <tr>
      <th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Department</th>
      <td style="padding: 8px; text-align: left; border: 1px solid #ddd;">{{.Department}}</td>
    </tr>
  </table>

  <p>Please contact the hospital if you have any questions or concerns.</p>

  <p>Best regards,<br>
  {{.Hospital}}</p>
</body>
</html>
`))

// FormatAppointmentEmail renders the reschedule notice. Missing details
// render as "Unknown".
func FormatAppointmentEmail(patientID, hospital string, d AppointmentDetails) (Content, error) {
	d = d.withDefaults()
	data := templateData{
		PatientID:    patientID,
		Hospital:     hospital,
		PreviousDate: d.PreviousDate,
		NewDate:      d.NewDate,
		Doctor:       d.Doctor,
		Department:   d.Department,
	}

	var text, html strings.Builder
	if err := textTemplate.Execute(&text, data); err != nil {
		return Content{}, err
	}
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return Content{}, err
	}
	return Content{Text: text.String(), HTML: html.String()}, nil
}
