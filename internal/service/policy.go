package service

import (
	"github.com/lucas-podkowa/library-service/pkg/auth"
)

type Action int

const (
	ActionLoanRequest Action = iota + 1
	ActionLoanReturn
	ActionLoanCancel
	ActionLoanRead
	ActionLoanReadAll
	ActionBookManage
	ActionStockAdjust
)

// Allow is the single authorization decision point: it maps
// (role, action, target owner) to allow/deny. ownerID is the user the
// operation acts on, 0 when the action has no owner.
//
// Librarians and admins may perform any action on any user. Readers are
// limited to their own loans: they may request, return and read those,
// and nothing else. Cancellation and catalog mutation are privileged.
func Allow(p auth.Principal, action Action, ownerID int) bool {
	if p.Privileged() {
		return true
	}
	switch action {
	case ActionLoanRequest, ActionLoanReturn, ActionLoanRead:
		return p.UserID != 0 && p.UserID == ownerID
	default:
		return false
	}
}
