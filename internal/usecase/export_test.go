package usecase

import "time"

// Test-only hooks so the external test package can freeze each service's
// clock.

func (s *BetService) SetNowForTest(f func() time.Time) { s.now = f }

func (s *EvaluationService) SetNowForTest(f func() time.Time) { s.now = f }

func (s *ResultService) SetNowForTest(f func() time.Time) { s.now = f }
