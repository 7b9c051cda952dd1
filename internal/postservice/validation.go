package postservice

import (
	"github.com/writelyhq/writely/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 3, 200), "title", "must be between 3 and 200 characters long")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
}

func validateAction(v *common.Validator, action Action) {
	v.Check(common.PermittedValue(action, ActionSaveDraft, ActionPublish), "action", "must be either save_draft or publish")
}

func validateName(v *common.Validator, name, field string) {
	v.Check(name != "", field, "must be provided")
	v.Check(v.CheckStringLength(name, 1, 100), field, "must not be more than 100 characters long")
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
