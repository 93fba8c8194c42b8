package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationConstructors(t *testing.T) {
	app := NewApplicationNotification("alice@iitj.ac.in", "bob@iitj.ac.in", "t1", "Fetch coffee")
	assert.Equal(t, NotificationApplication, app.Type)
	assert.Equal(t, "alice@iitj.ac.in", app.User)
	assert.Equal(t, "bob@iitj.ac.in", app.ApplicantEmail)
	assert.Equal(t, `bob@iitj.ac.in has applied to your task: "Fetch coffee"`, app.Message)

	asg := NewAssignmentNotification("bob@iitj.ac.in", "t1", "Fetch coffee", 30)
	assert.Equal(t, NotificationAssignment, asg.Type)
	assert.Equal(t, `Congratulations! You have been assigned the task: "Fetch coffee". Reward: ₹30`, asg.Message)

	rej := NewRejectionNotification("carol@iitj.ac.in", "t1", "Fetch coffee")
	assert.Equal(t, NotificationRejection, rej.Type)
	assert.Equal(t, `The task "Fetch coffee" has been assigned to another applicant.`, rej.Message)

	gen := NewGeneralNotification("alice@iitj.ac.in", "anything")
	assert.Equal(t, NotificationGeneral, gen.Type)
	assert.Equal(t, "anything", gen.Message)
}

func TestRatePromptWording(t *testing.T) {
	// the voyager rates their questmaster
	p := NewRatePrompt("bob@iitj.ac.in", "t1", "Fetch coffee", RoleQuestmaster, "alice@iitj.ac.in")
	assert.Equal(t, NotificationRate, p.Type)
	assert.Equal(t, RoleQuestmaster, p.RatingType)
	assert.Equal(t, "alice@iitj.ac.in", p.RateTargetEmail)
	assert.Equal(t, `Please rate your Questmaster for "Fetch coffee"`, p.Message)

	// the questmaster rates their voyager
	p = NewRatePrompt("alice@iitj.ac.in", "t1", "Fetch coffee", RoleVoyager, "bob@iitj.ac.in")
	assert.Equal(t, RoleVoyager, p.RatingType)
	assert.Equal(t, "bob@iitj.ac.in", p.RateTargetEmail)
	assert.Equal(t, `Please rate the Voyager for "Fetch coffee"`, p.Message)
}

func TestNotificationValidate(t *testing.T) {
	cases := []struct {
		name    string
		n       *Notification
		wantErr bool
	}{
		{"valid general", NewGeneralNotification("a@iitj.ac.in", "hi"), false},
		{"valid application", NewApplicationNotification("a@iitj.ac.in", "b@iitj.ac.in", "t1", "x"), false},
		{"valid assignment", NewAssignmentNotification("b@iitj.ac.in", "t1", "x", 10), false},
		{"valid rejection", NewRejectionNotification("c@iitj.ac.in", "t1", "x"), false},
		{"valid rate", NewRatePrompt("b@iitj.ac.in", "t1", "x", RoleQuestmaster, "a@iitj.ac.in"), false},
		{"no recipient", &Notification{Type: NotificationGeneral, Message: "hi"}, true},
		{"application without applicant", &Notification{User: "a@iitj.ac.in", Type: NotificationApplication, TaskID: "t1"}, true},
		{"application without task", &Notification{User: "a@iitj.ac.in", Type: NotificationApplication, ApplicantEmail: "b@iitj.ac.in"}, true},
		{"rate without target", &Notification{User: "a@iitj.ac.in", Type: NotificationRate, RatingType: RoleVoyager}, true},
		{"rate with bad role", &Notification{User: "a@iitj.ac.in", Type: NotificationRate, RatingType: "referee", RateTargetEmail: "b@iitj.ac.in"}, true},
		{"unknown type", &Notification{User: "a@iitj.ac.in", Type: "spam"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.n.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
