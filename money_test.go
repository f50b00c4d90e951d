package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustParseMoney(t *testing.T) {
	assert.True(t, MustParseMoney("100.50").Equal(NewMoneyFromFloat(100.50)))
	assert.True(t, MustParseMoney("not-a-number").IsZero())
}

func TestMaxMoney(t *testing.T) {
	a := NewMoneyFromFloat(1)
	b := NewMoneyFromFloat(2)
	assert.True(t, MaxMoney(a, b).Equal(b))
	assert.True(t, MaxMoney(b, a).Equal(b))
}

func TestRoundBankers(t *testing.T) {
	half := MustParseMoney("2.5")
	assert.True(t, RoundBankers(half, 0).Equal(NewMoneyFromFloat(2)))
}
