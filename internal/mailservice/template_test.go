package mailservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTemplate(t *testing.T) {
	template := &Template{}

	testCases := []struct {
		name         string
		templateName string
		data         any
		contains     string
		expectedErr  bool
	}{
		{
			name:         "activation email",
			templateName: "activation_email.html",
			data: struct {
				ActivationToken string
			}{
				ActivationToken: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
			},
			contains: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		},
		{
			name:         "new post email",
			templateName: "new_post_email.html",
			data: struct {
				Title string
				Slug  string
			}{
				Title: "Hello World",
				Slug:  "hello-world",
			},
			contains: "/post/hello-world",
		},
		{
			name:         "invalid template name",
			templateName: "invalid_template.html",
			data:         nil,
			expectedErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, p, h, err := template.ParseTemplate(tc.templateName, tc.data)
			assert.Equal(t, tc.expectedErr, err != nil)

			if err == nil {
				assert.NotEmpty(t, s.String())
				assert.Contains(t, p.String(), tc.contains)
				assert.Contains(t, h.String(), tc.contains)
			}
		})
	}
}
