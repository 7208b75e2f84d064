package wizard

import "go.uber.org/zap"

// BeginNext validates the current step and, if it passes, marks the session
// busy with the following step pending. The step itself does not change
// until Finish.
func (s *Session) BeginNext() (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return s.step, ErrTransitionInFlight
	}
	if s.confirmed {
		return s.step, ErrAlreadyConfirmed
	}
	if s.step >= StepConfirm {
		return s.step, ErrNotAtConfirm
	}
	if err := s.validateStep(); err != nil {
		s.logger.Debug("forward transition rejected",
			zap.Stringer("step", s.step),
			zap.Error(err),
		)
		return s.step, err
	}
	s.begin(s.step + 1)
	return s.pending, nil
}

// BeginBack marks the session busy with the previous step pending.
func (s *Session) BeginBack() (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return s.step, ErrTransitionInFlight
	}
	if s.confirmed {
		return s.step, ErrAlreadyConfirmed
	}
	if s.step <= StepSelectClient {
		return s.step, ErrFirstStep
	}
	s.begin(s.step - 1)
	return s.pending, nil
}

// Finish applies the pending transition and clears the busy flag.
func (s *Session) Finish() (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.busy {
		return s.step, ErrNoPendingTransition
	}
	from := s.step
	s.step = s.pending
	s.pending = 0
	s.busy = false
	s.logger.Debug("step changed", zap.Stringer("from", from), zap.Stringer("to", s.step))
	return s.step, nil
}

// Next is BeginNext followed immediately by Finish.
func (s *Session) Next() (Step, error) {
	if _, err := s.BeginNext(); err != nil {
		return s.Step(), err
	}
	return s.Finish()
}

// Back is BeginBack followed immediately by Finish.
func (s *Session) Back() (Step, error) {
	if _, err := s.BeginBack(); err != nil {
		return s.Step(), err
	}
	return s.Finish()
}

// Validate reports whether the current step allows moving forward.
func (s *Session) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateStep()
}

func (s *Session) validateStep() error {
	switch s.step {
	case StepSelectClient:
		if s.clientID == "" {
			return ErrClientRequired
		}
	case StepSelectArticles:
		if len(s.lines) == 0 {
			return ErrArticlesRequired
		}
	}
	return nil
}

func (s *Session) begin(target Step) {
	s.busy = true
	s.pending = target
}
