package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sweetpotato0/chainsocket/capability"
	"github.com/sweetpotato0/chainsocket/config"
	errorskg "github.com/sweetpotato0/chainsocket/errors"
	"github.com/sweetpotato0/chainsocket/prompt"
)

// SelfAsk answers a question by letting the model pose follow-up questions,
// answering each with a search tool, until it commits to a final answer.
type SelfAsk struct {
	client capability.Client
	values config.Values
	*settings
}

// NewSelfAsk creates a self-ask agent. values must provide llm_name at call time.
func NewSelfAsk(client capability.Client, values config.Values, opts ...Option) *SelfAsk {
	return &SelfAsk{
		client:   client,
		values:   values,
		settings: newSettings(opts),
	}
}

// reasoningSession is the state of one Call. transcript only grows.
type reasoningSession struct {
	llm        string
	question   string
	transcript *prompt.Builder
	stops      []string
	userPrompt string
	// pending is true until userPrompt has been added to the transcript.
	pending   bool
	generated string
	// recorded is true once generated has been added to the transcript.
	recorded   bool
	iterations int
	logger     *slog.Logger
}

// Call runs one self-ask session to completion.
func (a *SelfAsk) Call(ctx context.Context, req *capability.AgentRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Input) == "" {
		return "", fmt.Errorf("self-ask question: %w", errorskg.ErrInvalidInput)
	}
	llm, err := a.values.Require(config.KeyLLMName)
	if err != nil {
		return "", err
	}
	name := a.values.GetOr(config.KeyName, "self-ask")

	s := &reasoningSession{
		llm:        llm,
		question:   req.Input,
		transcript: prompt.NewBuilder(prompt.SelfAskFewShot),
		logger:     a.logger.With("agent", name),
	}

	// INIT
	opening, err := prompt.SelfAskQuestion.Render(map[string]any{"Question": s.question})
	if err != nil {
		return "", err
	}
	s.stops = []string{prompt.IntermediateMarker}
	if err := a.ask(ctx, s, opening); err != nil {
		return "", err
	}

	for {
		// REASONING
		s.flush()
		if !strings.Contains(LastLine(s.generated), prompt.FollowUpMarker) {
			break
		}

		// NEED_TOOL
		if s.iterations >= a.maxIterations {
			return "", fmt.Errorf("%w after %d follow-up questions", errorskg.ErrReasoningDidNotConverge, s.iterations)
		}
		s.iterations++
		s.record()

		question, err := ExtractFollowUpQuestion(s.generated)
		if err != nil {
			return "", err
		}

		answer, ok := a.search(ctx, s, question)
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if ok {
			intermediate, err := prompt.SelfAskIntermediate.Render(map[string]any{"Answer": answer})
			if err != nil {
				return "", err
			}
			s.stops = []string{prompt.IntermediateMarker}
			if err := a.ask(ctx, s, intermediate); err != nil {
				return "", err
			}
			continue
		}

		// No answer: the model answers its own follow-up as context only.
		// The follow-up stays the latest text, so the next pass asks the tool again.
		s.transcript.Add(prompt.IntermediateMarker)
		s.stops = []string{"\n" + prompt.FollowUpMarker, prompt.FinalAnswerMarker}
		selfAnswer, err := a.generate(ctx, s)
		if err != nil {
			return "", err
		}
		s.transcript.Add(selfAnswer)
	}

	// CHECK_FINAL
	if !strings.Contains(s.generated, prompt.FinalAnswerMarker) {
		s.logger.Debug("forcing a final answer", "iterations", s.iterations)
		s.record()
		s.transcript.AddLine(prompt.FinalAnswerMarker)
		s.stops = []string{"\n"}
		if err := a.regenerate(ctx, s); err != nil {
			return "", err
		}
	}

	// FINALIZE
	answer := ExtractFinalAnswer(s.generated)
	s.logger.Info("self-ask session finished", "iterations", s.iterations)
	return answer, nil
}

// ask sends a new user prompt; it joins the transcript on the next flush.
func (a *SelfAsk) ask(ctx context.Context, s *reasoningSession, userPrompt string) error {
	s.userPrompt = userPrompt
	s.pending = true
	return a.regenerate(ctx, s)
}

// regenerate replaces the latest generated text with a new generate call.
func (a *SelfAsk) regenerate(ctx context.Context, s *reasoningSession) error {
	out, err := a.generate(ctx, s)
	if err != nil {
		return err
	}
	s.generated = out
	s.recorded = false
	return nil
}

// generate issues a generate call with the current user prompt, stops and transcript.
func (a *SelfAsk) generate(ctx context.Context, s *reasoningSession) (string, error) {
	req := &capability.GenerationRequest{
		Name:          s.llm,
		SystemPrompt:  s.transcript.Build(),
		UserPrompt:    s.userPrompt,
		StopSequences: append([]string(nil), s.stops...),
	}
	s.logger.Debug("calling llm", "llm", s.llm, "stop", req.StopSequences)

	reply, err := a.client.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("self-ask generate: %w", err)
	}
	s.logger.Debug("llm replied", "llm", s.llm, "output", reply.Output)
	return reply.Output, nil
}

// search returns the tool's answer and false when none is available.
func (a *SelfAsk) search(ctx context.Context, s *reasoningSession, question string) (string, bool) {
	s.logger.Debug("calling tool", "tool", a.searchTool, "input", question)

	reply, err := a.client.Execute(ctx, &capability.ToolRequest{Name: a.searchTool, Input: question})
	if err != nil {
		s.logger.Info("tool returned no answer", "tool", a.searchTool, "error", err)
		return "", false
	}
	if strings.TrimSpace(reply.Output) == "" {
		s.logger.Info("tool returned no answer", "tool", a.searchTool)
		return "", false
	}
	return reply.Output, true
}

func (s *reasoningSession) flush() {
	if s.pending {
		s.transcript.Add(s.userPrompt)
		s.pending = false
	}
}

func (s *reasoningSession) record() {
	if !s.recorded {
		s.transcript.Add(s.generated)
		s.recorded = true
	}
}
