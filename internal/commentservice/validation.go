package commentservice

import (
	"regexp"

	"github.com/writelyhq/writely/internal/common"
)

var (
	EmailRX = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	SiteRX  = regexp.MustCompile(`^https?://`)
)

func validateAuthorName(v *common.Validator, name string) {
	v.Check(name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(name, 1, 100), "name", "must not be more than 100 characters long")
}

func validateAuthorEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(EmailRX.MatchString(email), "email", "must be a valid email address")
}

func validateBody(v *common.Validator, body string) {
	v.Check(body != "", "body", "must be provided")
}

func validateSite(v *common.Validator, site *string) {
	if site == nil {
		return
	}
	v.Check(SiteRX.MatchString(*site), "site", "must be a valid http or https URL")
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
