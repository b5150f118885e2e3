package service

import "fmt"

func welcomeEmailTemplate(name, dashboardURL, appName string) (string, string) {
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Add your first project and pick a username to get
a public portfolio page:
%s

Best,
The %s Team`, name, dashboardURL, appName)

	return subject, body
}
