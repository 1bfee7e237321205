package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestFeeCoversAge(t *testing.T) {
	fee := &MembershipFee{MembershipType: "Member", MinAge: intp(18), MaxAge: intp(35)}
	require.False(t, fee.CoversAge(17))
	require.True(t, fee.CoversAge(18))
	require.True(t, fee.CoversAge(35))
	require.False(t, fee.CoversAge(36))
}

func TestFeeOpenEndedBounds(t *testing.T) {
	noMin := &MembershipFee{MembershipType: "Member", MaxAge: intp(35)}
	require.True(t, noMin.CoversAge(1))
	require.False(t, noMin.CoversAge(36))

	noMax := &MembershipFee{MembershipType: "Member", MinAge: intp(36)}
	require.True(t, noMax.CoversAge(90))
	require.False(t, noMax.CoversAge(35))
}

func TestForeignFeeIgnoresAge(t *testing.T) {
	fee := &MembershipFee{MembershipType: "Member", ForeignMember: true, MinAge: intp(18), MaxAge: intp(35)}
	require.True(t, fee.CoversAge(99))
}

func TestFeeOverlaps(t *testing.T) {
	a := &MembershipFee{MembershipType: "Member", MinAge: intp(18), MaxAge: intp(35)}
	b := &MembershipFee{MembershipType: "Member", MinAge: intp(35), MaxAge: intp(60)}
	c := &MembershipFee{MembershipType: "Member", MinAge: intp(36), MaxAge: intp(60)}
	require.True(t, a.Overlaps(b), "shared boundary age collides")
	require.False(t, a.Overlaps(c))
}

func TestFeeOverlapScopedByTypeAndResidency(t *testing.T) {
	member := &MembershipFee{MembershipType: "Member", MinAge: intp(18), MaxAge: intp(35)}
	fellow := &MembershipFee{MembershipType: "Fellow", MinAge: intp(18), MaxAge: intp(35)}
	require.False(t, member.Overlaps(fellow))

	foreign := &MembershipFee{MembershipType: "Member", ForeignMember: true}
	require.False(t, member.Overlaps(foreign))

	foreign2 := &MembershipFee{MembershipType: "Member", ForeignMember: true, MinAge: intp(50)}
	require.True(t, foreign.Overlaps(foreign2), "foreign rows always collide regardless of bounds")
}

func TestFeeOpenEndedRowsOverlap(t *testing.T) {
	open := &MembershipFee{MembershipType: "Member"}
	bounded := &MembershipFee{MembershipType: "Member", MinAge: intp(40), MaxAge: intp(50)}
	require.True(t, open.Overlaps(bounded))
}
