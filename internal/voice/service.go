// Package voice is the entry point of the voice fingerprint engine. It
// extracts fingerprints, folds them into per-user profiles and answers
// readiness questions for downstream generators.
package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/voice-fingerprint/internal/aggregate"
	"github.com/jonathan/voice-fingerprint/internal/config"
	"github.com/jonathan/voice-fingerprint/internal/fingerprint"
	"github.com/jonathan/voice-fingerprint/internal/locking"
	"github.com/jonathan/voice-fingerprint/internal/metrics"
	"github.com/jonathan/voice-fingerprint/internal/readiness"
	"github.com/jonathan/voice-fingerprint/internal/store"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

const (
	opLearn  = "learn"
	opForget = "forget"
	opReset  = "reset"
)

// Options tunes a Service.
type Options struct {
	MinWords         int
	MaxWords         int
	MaxDocumentShare float64
	StudioThresholds map[string]int
	DefaultThreshold int
	// RetryAttempts bounds commits tried per update before ConcurrentUpdateError.
	RetryAttempts  int
	RetryBaseDelay time.Duration
	// CacheTTL is how long a profile read may be served from memory. Zero disables caching.
	CacheTTL time.Duration
	Clock    fingerprint.Clock
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		MinWords:         fingerprint.DefaultMinWords,
		MaxWords:         fingerprint.DefaultMaxWords,
		MaxDocumentShare: aggregate.DefaultMaxDocumentShare,
		StudioThresholds: readiness.DefaultStudioThresholds,
		DefaultThreshold: readiness.DefaultThreshold,
		RetryAttempts:    5,
		RetryBaseDelay:   25 * time.Millisecond,
		CacheTTL:         5 * time.Minute,
		Clock:            fingerprint.SystemClock,
	}
}

// OptionsFromConfig maps loaded configuration onto service options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.MinWords = cfg.MinWords
	opts.MaxWords = cfg.MaxWords
	opts.MaxDocumentShare = cfg.MaxDocumentShare
	if len(cfg.StudioThresholds) > 0 {
		opts.StudioThresholds = cfg.StudioThresholds
	}
	opts.DefaultThreshold = cfg.DefaultThreshold
	opts.RetryAttempts = cfg.RetryAttempts
	opts.RetryBaseDelay = cfg.RetryBaseDelay.Std()
	opts.CacheTTL = cfg.CacheTTL.Std()
	// other instances write to a shared store without telling this cache
	if cfg.DatabaseURL != "" || cfg.RedisURL != "" {
		opts.CacheTTL = 0
	}
	return opts
}

// Service runs extract, learn, forget and reset against a store. Updates of
// one user are serialized by the locker and guarded by the store's version check.
type Service struct {
	store      store.Store
	locker     locking.Locker
	extractor  *fingerprint.Extractor
	aggregator *aggregate.Aggregator
	evaluator  *readiness.Evaluator
	profiles   *cache.Cache
	opts       Options

	// generations counts invalidations per user. A load only populates the
	// cache if no invalidation happened since it started.
	genMu       sync.Mutex
	generations map[string]uint64

	log        *logrus.Entry
	metrics    *metrics.Metrics
}

// NewService creates a service. A nil locker serializes in process; m may be nil.
func NewService(st store.Store, locker locking.Locker, opts Options, log *logrus.Entry, m *metrics.Metrics) *Service {
	if locker == nil {
		locker = locking.NewKeyedMutex()
	}
	if log == nil {
		log = logrus.WithField("component", "voice")
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 1
	}
	if opts.Clock == nil {
		opts.Clock = fingerprint.SystemClock
	}

	extractor := fingerprint.NewExtractor(opts.MinWords, opts.MaxWords)
	extractor.Clock = opts.Clock

	s := &Service{
		store:      st,
		locker:     locker,
		extractor:  extractor,
		aggregator: aggregate.New(opts.MaxDocumentShare),
		evaluator:  readiness.NewEvaluator(opts.StudioThresholds, opts.DefaultThreshold, log.WithField("component", "readiness")),
		opts:       opts,
		log:        log,
		metrics:    m,
	}
	if opts.CacheTTL > 0 {
		s.profiles = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
		s.generations = make(map[string]uint64)
	}
	return s
}

// Extract computes the fingerprint of text without touching any profile.
func (s *Service) Extract(text string) (types.Fingerprint, error) {
	start := time.Now()
	fp, err := s.extractor.Extract(text)
	if s.metrics != nil {
		s.metrics.ExtractionLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.countExtraction("rejected")
		return types.Fingerprint{}, err
	}
	s.countExtraction("ok")
	if s.metrics != nil {
		s.metrics.ExtractedWords.Observe(float64(fp.Meta.SampleWordCount))
	}
	return fp, nil
}

// LearnText extracts text and learns the result in one step. An empty
// meta.DocumentID gets a generated one.
func (s *Service) LearnText(ctx context.Context, userID, text string, meta types.DocumentMeta) (types.VoiceProfile, error) {
	fp, err := s.Extract(text)
	if err != nil {
		return types.VoiceProfile{}, err
	}
	return s.Learn(ctx, userID, fp, meta)
}

// Learn folds fp into the profile of userID and records an evolution entry.
// On any error the stored profile is unchanged.
func (s *Service) Learn(ctx context.Context, userID string, fp types.Fingerprint, meta types.DocumentMeta) (types.VoiceProfile, error) {
	if userID == "" {
		return types.VoiceProfile{}, &InvalidRequestError{Message: "user id is required"}
	}
	if meta.DocumentID == "" {
		meta.DocumentID = uuid.NewString()
	}
	if err := meta.Validate(); err != nil {
		return types.VoiceProfile{}, &InvalidRequestError{Message: "invalid document metadata", Cause: err}
	}
	if floor := s.extractor.Floor(); fp.Meta.SampleWordCount < floor {
		return types.VoiceProfile{}, &fingerprint.MinimumLengthError{Words: fp.Meta.SampleWordCount, Minimum: floor}
	}

	log := s.log.WithFields(logrus.Fields{"user_id": userID, "document_id": meta.DocumentID})
	profile, err := s.update(ctx, opLearn, userID, log, func(cur store.VersionedProfile) (store.Mutation, error) {
		prior, err := s.store.ListFingerprints(ctx, userID)
		if err != nil {
			return store.Mutation{}, err
		}
		var seq int64
		for _, d := range prior {
			if d.Sequence > seq {
				seq = d.Sequence
			}
		}
		doc := types.DocumentFingerprint{
			UserID:       userID,
			DocumentID:   meta.DocumentID,
			DocumentName: meta.FileName,
			WritingType:  meta.WritingType,
			Sequence:     seq + 1,
			LearnedAt:    s.opts.Clock(),
			Fingerprint:  fp,
		}

		base := cur.Profile
		base.UserID = userID
		next, err := s.aggregator.Learn(base, prior, doc)
		if err != nil {
			return store.Mutation{}, err
		}
		return store.Mutation{
			Profile:        next,
			PutFingerprint: &doc,
			HistoryFrom:    len(cur.Profile.EvolutionHistory),
		}, nil
	})
	if err != nil {
		return types.VoiceProfile{}, err
	}

	log.WithFields(logrus.Fields{
		"confidence": profile.ConfidenceLevel,
		"documents":  profile.DocumentCount,
	}).Info("Learned document")
	return profile, nil
}

// Forget removes documentID from the profile of userID and rebuilds the
// profile from the remaining documents as if they had been learned alone.
func (s *Service) Forget(ctx context.Context, userID, documentID string) (types.VoiceProfile, error) {
	if userID == "" || documentID == "" {
		return types.VoiceProfile{}, &InvalidRequestError{Message: "user id and document id are required"}
	}

	log := s.log.WithFields(logrus.Fields{"user_id": userID, "document_id": documentID})
	profile, err := s.update(ctx, opForget, userID, log, func(cur store.VersionedProfile) (store.Mutation, error) {
		docs, err := s.store.ListFingerprints(ctx, userID)
		if err != nil {
			return store.Mutation{}, err
		}
		next, _, err := s.aggregator.Forget(userID, docs, documentID)
		if err != nil {
			return store.Mutation{}, err
		}
		// Entries before the forgotten document replay identically.
		from := 0
		for i, d := range docs {
			if d.DocumentID == documentID {
				from = i
				break
			}
		}
		return store.Mutation{
			Profile:           next,
			DeleteDocumentIDs: []string{documentID},
			HistoryFrom:       from,
		}, nil
	})
	if err != nil {
		return types.VoiceProfile{}, err
	}

	log.WithFields(logrus.Fields{
		"confidence": profile.ConfidenceLevel,
		"documents":  profile.DocumentCount,
	}).Info("Forgot document")
	return profile, nil
}

// Reset returns the profile of userID to its empty state and drops every
// retained fingerprint.
func (s *Service) Reset(ctx context.Context, userID string) (types.VoiceProfile, error) {
	if userID == "" {
		return types.VoiceProfile{}, &InvalidRequestError{Message: "user id is required"}
	}

	log := s.log.WithField("user_id", userID)
	profile, err := s.update(ctx, opReset, userID, log, func(store.VersionedProfile) (store.Mutation, error) {
		return store.Mutation{
			Profile:   s.aggregator.Reset(userID),
			DeleteAll: true,
		}, nil
	})
	if err != nil {
		return types.VoiceProfile{}, err
	}
	log.Info("Reset voice profile")
	return profile, nil
}

// Profile returns the current profile of userID, empty if none was stored.
func (s *Service) Profile(ctx context.Context, userID string) (types.VoiceProfile, error) {
	if userID == "" {
		return types.VoiceProfile{}, &InvalidRequestError{Message: "user id is required"}
	}
	if s.profiles == nil {
		cur, err := s.store.LoadProfile(ctx, userID)
		if err != nil {
			return types.VoiceProfile{}, err
		}
		cur.Profile.UserID = userID
		return cur.Profile, nil
	}

	if cached, ok := s.profiles.Get(userID); ok {
		s.countCache("hit")
		return cached.(cachedProfile).profile.Clone(), nil
	}
	s.countCache("miss")

	gen := s.generation(userID)
	cur, err := s.store.LoadProfile(ctx, userID)
	if err != nil {
		return types.VoiceProfile{}, err
	}
	cur.Profile.UserID = userID
	s.remember(userID, gen, cur)
	return cur.Profile, nil
}

// cachedProfile is a profile together with the stored version it was read at.
type cachedProfile struct {
	version int64
	profile types.VoiceProfile
}

func (s *Service) generation(userID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[userID]
}

// remember caches cur unless the user was invalidated after gen was read or
// a newer version is already cached.
func (s *Service) remember(userID string, gen uint64, cur store.VersionedProfile) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[userID] != gen {
		return
	}
	if existing, ok := s.profiles.Get(userID); ok && existing.(cachedProfile).version > cur.Version {
		return
	}
	s.profiles.Set(userID, cachedProfile{version: cur.Version, profile: cur.Profile.Clone()}, cache.DefaultExpiration)
}

// History returns the evolution entries of userID, oldest first.
func (s *Service) History(ctx context.Context, userID string) ([]types.VoiceEvolution, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.EvolutionHistory == nil {
		return []types.VoiceEvolution{}, nil
	}
	return profile.EvolutionHistory, nil
}

// Documents returns the contributing documents of userID in learn order.
func (s *Service) Documents(ctx context.Context, userID string) ([]types.DocumentFingerprint, error) {
	if userID == "" {
		return nil, &InvalidRequestError{Message: "user id is required"}
	}
	return s.store.ListFingerprints(ctx, userID)
}

// GetGenerationContext reports what a downstream generator may use of the
// profile of userID for studio. Absent profiles yield a not-ready context.
func (s *Service) GetGenerationContext(ctx context.Context, userID, studio string) (types.GenerationContext, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return types.GenerationContext{}, err
	}
	return s.evaluator.GenerationContext(&profile, studio), nil
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

type mutate func(cur store.VersionedProfile) (store.Mutation, error)

// update holds the user lock and commits the mutation built by fn against
// the version it read, rebuilding it on version conflicts.
func (s *Service) update(ctx context.Context, op, userID string, log *logrus.Entry, fn mutate) (types.VoiceProfile, error) {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		s.countUpdate(op, "error")
		return types.VoiceProfile{}, fmt.Errorf("failed to lock profile of user %s: %w", userID, err)
	}
	defer unlock()

	delay := s.opts.RetryBaseDelay
	for attempt := 1; ; attempt++ {
		cur, err := s.store.LoadProfile(ctx, userID)
		if err != nil {
			s.countUpdate(op, "error")
			return types.VoiceProfile{}, err
		}

		m, err := fn(cur)
		if err != nil {
			s.countUpdate(op, outcomeFor(err))
			return types.VoiceProfile{}, err
		}
		m.UserID = userID
		m.ExpectedVersion = cur.Version
		m.Profile.UserID = userID

		_, err = s.store.Commit(ctx, m)
		if err == nil {
			s.invalidate(userID)
			s.countUpdate(op, "ok")
			if s.metrics != nil {
				s.metrics.ProfileConfidence.Observe(float64(m.Profile.ConfidenceLevel))
			}
			return m.Profile, nil
		}

		var conflict *store.ConflictError
		if !errors.As(err, &conflict) {
			s.countUpdate(op, "error")
			return types.VoiceProfile{}, err
		}
		if s.metrics != nil {
			s.metrics.CommitConflicts.Inc()
		}
		// another instance may have written through its own cache
		s.invalidate(userID)
		log.WithField("attempt", attempt).Warn("Profile version conflict")

		if attempt >= s.opts.RetryAttempts {
			s.countUpdate(op, "conflict")
			return types.VoiceProfile{}, &ConcurrentUpdateError{UserID: userID, Attempts: attempt, Cause: err}
		}
		select {
		case <-ctx.Done():
			s.countUpdate(op, "error")
			return types.VoiceProfile{}, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func outcomeFor(err error) string {
	if IsRetryable(err) {
		return "error"
	}
	return "rejected"
}

func (s *Service) invalidate(userID string) {
	if s.profiles == nil {
		return
	}
	s.genMu.Lock()
	s.generations[userID]++
	s.profiles.Delete(userID)
	s.genMu.Unlock()
}

func (s *Service) countExtraction(outcome string) {
	if s.metrics != nil {
		s.metrics.Extractions.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) countUpdate(op, outcome string) {
	if s.metrics != nil {
		s.metrics.ProfileUpdates.WithLabelValues(op, outcome).Inc()
	}
}

func (s *Service) countCache(result string) {
	if s.metrics != nil {
		s.metrics.ContextCacheHits.WithLabelValues(result).Inc()
	}
}
