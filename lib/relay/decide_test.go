// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import "testing"

func TestDecide(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		facts Facts
		want  Action
	}{
		{"start unbound non-member", KindStart, Facts{}, ActionJoinPrompt},
		{"check unbound non-member", KindCheck, Facts{}, ActionJoinPrompt},
		{"start unbound member", KindStart, Facts{Member: true}, ActionRegister},
		{"check unbound member", KindCheck, Facts{Member: true}, ActionRegister},
		{"start bound", KindStart, Facts{Bound: true}, ActionShowSerial},
		{"start bound ignores membership", KindStart, Facts{Bound: true, Member: false}, ActionShowSerial},
		{"check bound", KindCheck, Facts{Bound: true, Member: true}, ActionShowSerial},

		{"form bound", KindGetForm, Facts{Bound: true}, ActionShowForm},
		{"form unbound", KindGetForm, Facts{}, ActionFormUnbound},

		{"help user", KindHelp, Facts{}, ActionHelp},
		{"help staff", KindHelp, Facts{Staff: true}, ActionHelp},

		{"text unbound", KindText, Facts{}, ActionPromptRegister},
		{"text unbound reply", KindText, Facts{QualifyingReply: true}, ActionPromptRegister},
		{"text qualifying reply", KindText, Facts{Bound: true, QualifyingReply: true}, ActionRelayToStaff},
		{"text unrelated", KindText, Facts{Bound: true}, ActionIgnore},
		{"text unrelated with hint", KindText, Facts{Bound: true, HintUnrelated: true}, ActionHint},

		{"reply by non-staff", KindReply, Facts{ArgCount: 2}, ActionPermissionDenied},
		{"reply by staff", KindReply, Facts{Staff: true, ArgCount: 2}, ActionStaffReply},
		{"reply by staff long text", KindReply, Facts{Staff: true, ArgCount: 9}, ActionStaffReply},
		{"reply missing text", KindReply, Facts{Staff: true, ArgCount: 1}, ActionReplyUsage},
		{"reply no args", KindReply, Facts{Staff: true}, ActionReplyUsage},
		{"reply usage hidden from non-staff", KindReply, Facts{}, ActionPermissionDenied},

		{"history by non-staff", KindHistory, Facts{ArgCount: 1}, ActionPermissionDenied},
		{"history by staff", KindHistory, Facts{Staff: true, ArgCount: 1}, ActionHistory},
		{"history with limit", KindHistory, Facts{Staff: true, ArgCount: 2}, ActionHistory},
		{"history no serial", KindHistory, Facts{Staff: true}, ActionHistoryUsage},
		{"history extra args", KindHistory, Facts{Staff: true, ArgCount: 3}, ActionHistoryUsage},

		{"unknown command", KindUnknown, Facts{}, ActionUnknownCommand},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Decide(test.kind, test.facts); got != test.want {
				t.Errorf("Decide(%s, %+v) = %s, want %s", test.kind, test.facts, got, test.want)
			}
		})
	}
}

func TestActionAndKindNames(t *testing.T) {
	for action := ActionIgnore; action <= ActionUnknownCommand; action++ {
		if name := action.String(); name == "" || name == "invalid" {
			t.Errorf("action %d has no name", action)
		}
	}
	for kind := KindUnknown; kind <= KindText; kind++ {
		if name := kind.String(); name == "" || name == "invalid" {
			t.Errorf("kind %d has no name", kind)
		}
	}
	if Action(-1).String() != "invalid" || Kind(99).String() != "invalid" {
		t.Error("out-of-range values should be invalid")
	}
}
