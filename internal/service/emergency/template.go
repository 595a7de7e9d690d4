package emergency

import "html/template"

// alertTemplate is the urgent-donation email sent to each matching
// donor. It is rendered per recipient before dispatch starts.
var alertTemplate = template.Must(template.New("alert").Parse(`
<html>
	<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<div style="max-width: 600px; margin: 0 auto; padding: 20px; border: 2px solid #dc3545; border-radius: 10px;">
			<h2 style="color: #dc3545; text-align: center;">URGENT BLOOD DONATION NEEDED</h2>

			<div style="background-color: #f8f9fa; padding: 20px; border-radius: 5px; margin: 20px 0;">
				<h3 style="color: #dc3545;">Dear {{.DonorName}},</h3>
				<p>A patient urgently needs <strong>{{.BloodGroup}}</strong> blood donation.</p>
			</div>

			<div style="background-color: #fff3cd; padding: 15px; border-left: 4px solid #ffc107; margin: 20px 0;">
				<h4 style="margin-top: 0;">Emergency Details:</h4>
				<p><strong>Hospital:</strong> {{.HospitalName}}</p>
				<p><strong>Location:</strong> {{.Address}}, {{.City}}, {{.State}}</p>
				<p><strong>Blood Group Required:</strong> {{.BloodGroup}}</p>
				<p><strong>Contact Person:</strong> {{.RequesterName}}</p>
				<p><strong>Alert Time:</strong> {{.AlertTime}}</p>
				{{if .Notes}}<p><strong>Notes:</strong> {{.Notes}}</p>{{end}}
			</div>

			<div style="background-color: #d4edda; padding: 15px; border-radius: 5px; margin: 20px 0;">
				<h4 style="color: #155724; margin-top: 0;">How You Can Help:</h4>
				<p>If you are available to donate, please contact the hospital immediately.</p>
				<p style="font-size: 1.1em; font-weight: bold; color: #dc3545;">Your donation can save a life!</p>
			</div>

			<div style="text-align: center; margin-top: 30px; padding: 20px; background-color: #f8f9fa; border-radius: 5px;">
				<p style="margin: 0; color: #666;">Thank you for being a registered blood donor with BloodBridge</p>
			</div>
		</div>
	</body>
</html>
`))

type alertTemplateData struct {
	DonorName     string
	BloodGroup    string
	HospitalName  string
	Address       string
	City          string
	State         string
	RequesterName string
	AlertTime     string
	Notes         string
}
