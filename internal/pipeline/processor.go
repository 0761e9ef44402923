package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/acquire"
	"github.com/docgate/docgate/internal/classify"
	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
	"github.com/docgate/docgate/internal/fields"
	"github.com/docgate/docgate/internal/llm"
	"github.com/docgate/docgate/internal/privacy"
	"github.com/docgate/docgate/internal/verify"
)

// Config holds routing and metadata knobs for the document pipeline.
type Config struct {
	ForceLocal bool   // pin every document to the local extraction path
	ModelName  string // recorded in result metadata for externally routed runs
}

// Processor coordinates one document through acquisition, classification,
// confidential detection, routing, extraction, and verification. External and
// Checker are optional; without them every document runs the local path.
// Cache is optional outcome feedback for the template match cache.
type Processor struct {
	Logger     *slog.Logger
	Cfg        Config
	Acquirer   acquire.TextExtractor
	Classifier *classify.Classifier
	Detector   *privacy.Detector
	Local      fields.Extractor
	External   llm.FieldExtractor
	Checker    llm.GenuinenessChecker
	Verifier   *verify.Verifier
	Cache      *classify.MatchCache
}

func NewProcessor(
	logger *slog.Logger,
	cfg Config,
	acquirer acquire.TextExtractor,
	classifier *classify.Classifier,
	detector *privacy.Detector,
	local fields.Extractor,
	external llm.FieldExtractor,
	checker llm.GenuinenessChecker,
	verifier *verify.Verifier,
	cache *classify.MatchCache,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:     logger,
		Cfg:        cfg,
		Acquirer:   acquirer,
		Classifier: classifier,
		Detector:   detector,
		Local:      local,
		External:   external,
		Checker:    checker,
		Verifier:   verifier,
		Cache:      cache,
	}
}

// Process runs one document to a terminal result. It never returns an error:
// acquisition and extraction failures become status error, an untrustworthy
// extraction becomes status rejected, and partial data stays attached either
// way.
func (p *Processor) Process(ctx context.Context, raw *entity.RawDocument) *entity.ProcessingResult {
	started := time.Now()
	if raw == nil {
		raw = &entity.RawDocument{}
	}
	jobID := raw.ID
	if jobID == uuid.Nil {
		jobID = uuid.New()
	}
	track := newJobTrack(jobID, p.Logger)

	// Clients deeper in the pipeline pick the job up from the context for
	// their own log lines.
	ctx = common.WithJobID(ctx, jobID.String())

	meta := entity.ProcessingMeta{
		JobID:     jobID,
		Backend:   constants.BackendLocalOnly,
		StartedAt: started,
	}

	p.Logger.Info("pipeline.start",
		"job_id", jobID,
		"file", raw.Filename,
		"format", string(raw.Format))

	v := common.NewValidator().Field("filename", raw.Filename, common.Required)
	if len(raw.Data) == 0 {
		v.Field("source_path", raw.SourcePath, common.Required)
	}
	if v.HasErrors() {
		return p.fail(track, raw, meta, started, "input validation",
			common.NewAppError(common.CodeInvalidInput, v.ErrorMessage(), common.ErrValidation))
	}

	track.advance(constants.StateAcquiring)
	text, err := p.Acquirer.Acquire(ctx, raw)
	if err != nil {
		return p.fail(track, raw, meta, started, "text acquisition", err)
	}
	meta.OCRUsed = text.Method != entity.MethodDirect

	// Classification and the confidential scan are independent of each
	// other; run them concurrently.
	track.advance(constants.StateClassifying)
	var (
		cand    entity.TypeCandidate
		verdict entity.ConfidentialVerdict
		wg      sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cand = p.Classifier.Classify(ctx, raw, text)
	}()
	go func() {
		defer wg.Done()
		verdict = p.Detector.Detect(text.Text, nil)
	}()
	wg.Wait()

	// The sensitive-type signal needs the classification result, so it joins
	// here instead of inside the concurrent scan.
	if !verdict.Confidential && constants.IsSensitive(cand.Type) {
		verdict.Confidential = true
		verdict.SensitiveType = true
	}

	// Backend is frozen from here on. A confidential document never reaches
	// the external service, whatever happens downstream.
	track.advance(constants.StateRouted)
	backend := p.route(&verdict)
	meta.Backend = backend
	if backend == constants.BackendExternal && p.Cfg.ModelName != "" {
		model := p.Cfg.ModelName
		meta.ModelName = &model
	}
	p.Logger.Info("pipeline.routed",
		"job_id", jobID,
		"backend", string(backend),
		"doc_type", string(cand.Type),
		"type_confidence", cand.Confidence,
		"type_source", cand.Source,
		"confidential", verdict.Confidential,
		"signals", verdict.Signals())

	track.advance(constants.StateExtracting)
	var fx *entity.Fields
	if backend == constants.BackendLocalOnly {
		fx, err = p.Local.Extract(ctx, text.Text, cand.Type)
	} else {
		fx, err = p.extractExternal(ctx, raw, text, cand.Type)
	}
	if err != nil {
		res := p.fail(track, raw, meta, started, "field extraction", err)
		res.DocumentType = cand.Type
		res.Confidential = &verdict
		return res
	}

	track.advance(constants.StateVerifying)
	vv := p.Verifier.Verify(fx, cand.Type, text.Text)
	if backend == constants.BackendExternal && p.Checker != nil {
		p.mergeGenuineness(ctx, raw, text, cand.Type, &vv)
	}

	p.recordOutcome(ctx, raw, vv.IsGenuine)

	track.advance(constants.StateDone)
	meta.ElapsedMS = time.Since(started).Milliseconds()

	result := &entity.ProcessingResult{
		Status:       constants.StatusSuccess,
		DocumentType: cand.Type,
		Confidence:   vv.ConfidenceScore,
		Fields:       fx,
		Verification: &vv,
		Confidential: &verdict,
		SourcePath:   raw.SourcePath,
		Meta:         meta,
	}
	if !vv.IsGenuine {
		result.Status = constants.StatusRejected
		if vv.RejectionReason != nil {
			result.Reason = *vv.RejectionReason
		}
	}

	p.Logger.Info("pipeline.done",
		"job_id", jobID,
		"status", string(result.Status),
		"doc_type", string(cand.Type),
		"confidence", result.Confidence,
		"backend", string(meta.Backend),
		"fields", fx.Len(),
		"elapsed_ms", meta.ElapsedMS)
	return result
}

func (p *Processor) route(verdict *entity.ConfidentialVerdict) constants.ProcessingBackend {
	switch {
	case verdict.Confidential:
		return constants.BackendLocalOnly
	case p.Cfg.ForceLocal:
		return constants.BackendLocalOnly
	case p.External == nil:
		return constants.BackendLocalOnly
	default:
		return constants.BackendExternal
	}
}

// fail closes the state machine and assembles an error result. Callers attach
// whatever context they already have (type, confidential verdict).
func (p *Processor) fail(track *jobTrack, raw *entity.RawDocument, meta entity.ProcessingMeta, started time.Time, stage string, err error) *entity.ProcessingResult {
	track.advance(constants.StateDone)
	meta.ElapsedMS = time.Since(started).Milliseconds()
	p.Logger.Error("pipeline.failed",
		"job_id", meta.JobID,
		"stage", stage,
		"error", err)
	return &entity.ProcessingResult{
		Status:       constants.StatusError,
		DocumentType: constants.Unknown,
		Reason:       stage + ": " + err.Error(),
		SourcePath:   raw.SourcePath,
		Meta:         meta,
	}
}

func (p *Processor) extractExternal(ctx context.Context, raw *entity.RawDocument, text *entity.ExtractedText, docType constants.DocumentType) (*entity.Fields, error) {
	req := llm.ExtractRequest{
		Text:         text.Text,
		DocType:      docType,
		FilenameHint: raw.Filename,
		Language:     text.Language,
	}
	res, _, err := p.External.ExtractFields(ctx, req)
	if err != nil {
		return nil, common.NewExtractionError("external extraction", err)
	}
	return externalFields(res, docType), nil
}

// externalFields flattens the service's mapping into cleaned Fields: required
// fields first in their canonical order, extras after in name order. The
// service reports one document-level confidence, so every retained field
// carries it and verification blends it like any other backend confidence.
func externalFields(res llm.ExtractResult, docType constants.DocumentType) *entity.Fields {
	out := entity.NewFields()
	add := func(name, value string) {
		cleaned := fields.CleanValue(value)
		if fields.IsEmptyLike(cleaned) {
			return
		}
		out.Set(name, cleaned, res.Confidence)
	}

	seen := make(map[string]bool, len(res.Data))
	for _, name := range constants.RequiredFields[docType] {
		if v, ok := res.Data[name]; ok {
			add(name, v)
			seen[name] = true
		}
	}
	extras := make([]string, 0, len(res.Data))
	for name := range res.Data {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		add(name, res.Data[name])
	}
	return out
}

// mergeGenuineness folds the external service's authenticity report into the
// locally computed verdict. The merge only tightens: a service reject stands
// even when the local math passed, and the service confidence can lower the
// aggregate but never raise a failing one.
func (p *Processor) mergeGenuineness(ctx context.Context, raw *entity.RawDocument, text *entity.ExtractedText, docType constants.DocumentType, vv *entity.VerificationVerdict) {
	req := llm.ExtractRequest{
		Text:         text.Text,
		DocType:      docType,
		FilenameHint: raw.Filename,
		Language:     text.Language,
	}
	report, _, err := p.Checker.CheckGenuineness(ctx, req)
	if err != nil {
		p.Logger.Warn("pipeline.genuineness.unavailable",
			"file", raw.Filename,
			"error", err)
		return
	}

	if vv.Checks == nil {
		vv.Checks = make(map[string]entity.CheckResult, len(report.VerificationChecks))
	}
	for _, ck := range report.VerificationChecks {
		passed := ck.Status == "passed"
		conf := 0.0
		if passed {
			conf = 1.0
		}
		vv.Checks[ck.CheckType] = entity.CheckResult{
			Passed:     passed,
			Confidence: conf,
			Details:    ck.Details,
		}
	}
	if len(report.SecurityFeaturesFound) > 0 {
		vv.SecurityNotes = append(vv.SecurityNotes, report.SecurityFeaturesFound...)
	}
	if report.ConfidenceScore > 0 && report.ConfidenceScore < vv.ConfidenceScore {
		vv.ConfidenceScore = report.ConfidenceScore
	}
	if !report.IsGenuine && vv.IsGenuine {
		vv.IsGenuine = false
		reason := report.RejectionReason
		if reason == "" {
			reason = "Document failed authenticity verification"
		}
		vv.RejectionReason = &reason
	}

	p.Logger.Info("pipeline.genuineness.merged",
		"file", raw.Filename,
		"service_genuine", report.IsGenuine,
		"service_confidence", report.ConfidenceScore,
		"checks", len(report.VerificationChecks))
}

// recordOutcome feeds the terminal verdict back into the match cache so the
// per-template success and failure counters stay honest.
func (p *Processor) recordOutcome(ctx context.Context, raw *entity.RawDocument, success bool) {
	if p.Cache == nil || len(raw.ContentHash) == 0 {
		return
	}
	if err := p.Cache.RecordOutcome(ctx, raw.ContentHash, success); err != nil {
		p.Logger.Warn("pipeline.cache.outcome_failed",
			"file", raw.Filename,
			"error", err)
	}
}
