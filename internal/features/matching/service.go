package matching

import (
	"context"
	"fmt"
	"strings"

	"go-docmap/internal/features/document"
	"go-docmap/internal/features/instance"
	"go-docmap/internal/features/mapping"
	"go-docmap/internal/features/template"
	"go-docmap/pkg/transform"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// LookupTableSource resolves named reference tables for LOOKUP rules that
// name a table instead of carrying one inline.
type LookupTableSource interface {
	Table(ctx context.Context, name string) (map[string]string, bool)
}

type MatchService interface {
	// Execute runs matching against a persistent instance. Per-document
	// failures are reported in the result, not returned as an error; a
	// non-nil error means the run aborted and the instance moved to ERROR.
	Execute(ctx context.Context, req MatchRequest, progress ProgressFunc) (*MatchResult, error)
	// Preview runs the same pipeline in memory without touching any instance
	Preview(ctx context.Context, req PreviewRequest) (*PreviewMatchResult, error)
}

type MatchServiceImpl struct {
	Instances instance.InstanceRepository
	Rows      instance.RowRepository
	Documents document.DocumentRepository
	Templates template.TemplateRepository
	Resolver  mapping.Resolver
	Lookups   LookupTableSource
	Hub       *ProgressHub
	Logger    *zap.Logger
}

func NewMatchService(
	instances instance.InstanceRepository,
	rows instance.RowRepository,
	documents document.DocumentRepository,
	templates template.TemplateRepository,
	resolver mapping.Resolver,
	lookups LookupTableSource,
	hub *ProgressHub,
	logger *zap.Logger,
) MatchService {
	return &MatchServiceImpl{
		Instances: instances,
		Rows:      rows,
		Documents: documents,
		Templates: templates,
		Resolver:  resolver,
		Lookups:   lookups,
		Hub:       hub,
		Logger:    logger,
	}
}

// runState carries the per-run caches through the batch loop
type runState struct {
	inst        *instance.TemplateInstance
	tmpl        *template.DataTemplate
	opts        MatchOptions
	mappings    map[string]*mapping.ResolvedMapping
	rowKeyField string
	lookupFn    func(name string) (map[string]string, bool)
}

func (s *MatchServiceImpl) Execute(ctx context.Context, req MatchRequest, progress ProgressFunc) (*MatchResult, error) {
	inst, err := s.Instances.Get(ctx, req.TemplateInstanceID)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.Templates.Get(ctx, inst.TemplateID.Hex())
	if err != nil {
		return nil, err
	}

	run, err := s.newRunState(ctx, inst, tmpl, req.Options)
	if err != nil {
		return nil, err
	}

	// Claim last so a failed precondition never leaves the instance stuck
	if err := s.Instances.ClaimProcessing(ctx, inst.ID); err != nil {
		return nil, err
	}
	s.Logger.Info("matching run started",
		zap.String("instance_id", inst.ID.Hex()),
		zap.Int("documents", len(req.DocumentIDs)),
	)

	batchSize := req.Options.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	result := &MatchResult{InstanceID: req.TemplateInstanceID}
	total := len(req.DocumentIDs)
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		for _, docID := range req.DocumentIDs[start:end] {
			rr, err := s.processDocument(ctx, run, docID)
			if err != nil {
				s.markError(ctx, inst.ID, err)
				return result, err
			}
			result.Results = append(result.Results, rr)
			if rr.Status == instance.RowStatusSkipped {
				result.Skipped++
			} else {
				result.Processed++
			}
		}

		counters, err := s.Rows.CountByStatus(ctx, inst.ID)
		if err != nil {
			s.markError(ctx, inst.ID, err)
			return result, err
		}
		if err := s.Instances.SetCounters(ctx, inst.ID, counters); err != nil {
			s.markError(ctx, inst.ID, err)
			return result, err
		}
		result.Counters = counters
		s.publish(ProgressEvent{
			InstanceID: req.TemplateInstanceID,
			Processed:  end,
			Total:      total,
			Counters:   counters,
		}, progress)
	}

	if total == 0 {
		counters, err := s.Rows.CountByStatus(ctx, inst.ID)
		if err != nil {
			s.markError(ctx, inst.ID, err)
			return result, err
		}
		result.Counters = counters
	}

	if err := s.Instances.SetStatus(ctx, inst.ID, instance.StatusCompleted, ""); err != nil {
		return result, err
	}
	s.Logger.Info("matching run completed",
		zap.String("instance_id", inst.ID.Hex()),
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("rows", result.Counters.RowCount),
		zap.Int("invalid_rows", result.Counters.ErrorRowCount),
	)
	return result, nil
}

// newRunState resolves the base mapping and fails fast when nothing
// resolves, before the instance is claimed.
func (s *MatchServiceImpl) newRunState(ctx context.Context, inst *instance.TemplateInstance, tmpl *template.DataTemplate, opts MatchOptions) (*runState, error) {
	base := mapping.MappingContext{CompanyID: opts.CompanyID, FormatID: opts.FormatID}
	resolved, err := s.Resolver.Resolve(ctx, inst.TemplateID, base)
	if err != nil {
		return nil, err
	}
	if len(resolved.Rules) == 0 {
		return nil, fmt.Errorf("no mapping rules resolve for template %s (company=%q format=%q)",
			inst.TemplateID.Hex(), opts.CompanyID, opts.FormatID)
	}

	rowKeyField := opts.RowKeyField
	if rowKeyField == "" {
		rowKeyField = tmpl.RowKeyField
	}
	if rowKeyField == "" {
		rowKeyField = template.DefaultRowKeyField
	}

	run := &runState{
		inst:        inst,
		tmpl:        tmpl,
		opts:        opts,
		mappings:    map[string]*mapping.ResolvedMapping{mappingKey(base): resolved},
		rowKeyField: rowKeyField,
	}
	if s.Lookups != nil {
		run.lookupFn = func(name string) (map[string]string, bool) {
			return s.Lookups.Table(ctx, name)
		}
	}
	return run, nil
}

// processDocument maps one document and merges its contribution into the
// row store. The error return is reserved for storage failures; everything
// a single bad document can cause comes back inside the RowResult.
func (s *MatchServiceImpl) processDocument(ctx context.Context, run *runState, docID string) (RowResult, error) {
	doc, err := s.Documents.Get(ctx, docID)
	if err != nil {
		return RowResult{
			DocumentID: docID,
			Status:     instance.RowStatusSkipped,
			Message:    fmt.Sprintf("document unavailable: %v", err),
		}, nil
	}

	resolved, err := s.resolveFor(ctx, run, doc)
	if err != nil {
		return RowResult{}, err
	}
	if len(resolved.Rules) == 0 {
		return RowResult{
			DocumentID: docID,
			Status:     instance.RowStatusSkipped,
			Message:    "no mapping rules resolve for this document",
		}, nil
	}

	fields := doc.ExtractedFields
	rowKey := strings.TrimSpace(transform.Stringify(fields[run.rowKeyField]))
	if rowKey == "" || fields[run.rowKeyField] == nil {
		return RowResult{
			DocumentID: docID,
			Status:     instance.RowStatusSkipped,
			Message:    fmt.Sprintf("row key field %q missing or empty", run.rowKeyField),
		}, nil
	}

	contrib := s.applyRules(fields, resolved.Rules, docID, rowKey, run.lookupFn)
	merged, err := s.Rows.Upsert(ctx, run.inst.ID, contrib)
	if err != nil {
		return RowResult{}, err
	}

	status, combined := s.validateRow(merged, run, resolved)
	if err := s.Rows.SetValidation(ctx, run.inst.ID, rowKey, status, combined); err != nil {
		return RowResult{}, err
	}

	return RowResult{
		DocumentID:  docID,
		RowKey:      rowKey,
		Status:      status,
		FieldErrors: contrib.FieldErrors,
	}, nil
}

// applyRules produces one document's contribution. A failing rule is
// isolated to its own target field.
func (s *MatchServiceImpl) applyRules(fields map[string]interface{}, rules []mapping.MappingRule, docID, rowKey string, lookupFn func(string) (map[string]string, bool)) instance.RowContribution {
	contrib := instance.RowContribution{
		RowKey:      rowKey,
		DocumentID:  docID,
		FieldValues: map[string]interface{}{},
		FieldErrors: map[string]string{},
	}
	for _, rule := range rules {
		tctx := transform.Context{
			Row:         fields,
			SourceField: rule.SourceField,
			TargetField: rule.TargetField,
			LookupTable: lookupFn,
		}
		out, err := transform.Execute(fields[rule.SourceField], rule.TransformType, rule.TransformParams, tctx)
		if err != nil {
			contrib.FieldErrors[rule.TargetField] = err.Error()
			continue
		}
		contrib.FieldValues[rule.TargetField] = out
	}
	return contrib
}

// validateRow revalidates the merged row. A field error recorded by an
// earlier document is dropped once any document supplies a value for that
// field, so error keys and value keys stay disjoint.
func (s *MatchServiceImpl) validateRow(merged *instance.Row, run *runState, resolved *mapping.ResolvedMapping) (instance.RowStatus, map[string]string) {
	combined := map[string]string{}
	for field, msg := range merged.ValidationErrors {
		if _, ok := merged.FieldValues[field]; !ok {
			combined[field] = msg
		}
	}

	if !run.opts.SkipValidation {
		for _, field := range requiredFields(run.tmpl, resolved) {
			if _, ok := combined[field]; ok {
				continue
			}
			v, ok := merged.FieldValues[field]
			if !ok || v == nil || transform.Stringify(v) == "" {
				combined[field] = "required field missing"
			}
		}
	}

	if len(combined) > 0 {
		return instance.RowStatusInvalid, combined
	}
	return instance.RowStatusValid, combined
}

// requiredFields unions the template's required columns with the targets
// the resolved rules flag as required.
func requiredFields(tmpl *template.DataTemplate, resolved *mapping.ResolvedMapping) []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range tmpl.RequiredColumns() {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, rule := range resolved.Rules {
		if rule.IsRequired && !seen[rule.TargetField] {
			seen[rule.TargetField] = true
			out = append(out, rule.TargetField)
		}
	}
	return out
}

// resolveFor returns the mapping for a document's own company and format,
// falling back to the run options, resolved once per distinct pair.
func (s *MatchServiceImpl) resolveFor(ctx context.Context, run *runState, doc *document.Document) (*mapping.ResolvedMapping, error) {
	mctx := mapping.MappingContext{CompanyID: doc.CompanyID, FormatID: doc.FormatID}
	if mctx.CompanyID == "" {
		mctx.CompanyID = run.opts.CompanyID
	}
	if mctx.FormatID == "" {
		mctx.FormatID = run.opts.FormatID
	}

	key := mappingKey(mctx)
	if cached, ok := run.mappings[key]; ok {
		return cached, nil
	}
	resolved, err := s.Resolver.Resolve(ctx, run.inst.TemplateID, mctx)
	if err != nil {
		return nil, err
	}
	run.mappings[key] = resolved
	return resolved, nil
}

func mappingKey(mctx mapping.MappingContext) string {
	return mctx.CompanyID + "\x00" + mctx.FormatID
}

func (s *MatchServiceImpl) markError(ctx context.Context, id primitive.ObjectID, cause error) {
	s.Logger.Error("matching run aborted", zap.String("instance_id", id.Hex()), zap.Error(cause))
	if err := s.Instances.SetStatus(ctx, id, instance.StatusError, cause.Error()); err != nil {
		s.Logger.Error("failed to mark instance errored", zap.String("instance_id", id.Hex()), zap.Error(err))
	}
}

func (s *MatchServiceImpl) publish(evt ProgressEvent, progress ProgressFunc) {
	if s.Hub != nil {
		s.Hub.Publish(evt)
	}
	if progress != nil {
		progress(evt)
	}
}

// Preview maps documents against a template entirely in memory. No
// instance is claimed and nothing is persisted; rows merge by key the
// same way the persistent path merges them.
func (s *MatchServiceImpl) Preview(ctx context.Context, req PreviewRequest) (*PreviewMatchResult, error) {
	tmpl, err := s.Templates.Get(ctx, req.DataTemplateID)
	if err != nil {
		return nil, err
	}
	inst := &instance.TemplateInstance{TemplateID: tmpl.ID}
	run, err := s.newRunState(ctx, inst, tmpl, req.Options)
	if err != nil {
		return nil, err
	}

	result := &PreviewMatchResult{TemplateID: req.DataTemplateID}
	rows := map[string]*PreviewRow{}
	var order []string

	for _, docID := range req.DocumentIDs {
		rr, resolved, contrib := s.previewDocument(ctx, run, docID)
		result.Results = append(result.Results, rr)
		if rr.Status == instance.RowStatusSkipped {
			result.Skipped++
			continue
		}
		result.Processed++

		row, ok := rows[contrib.RowKey]
		if !ok {
			row = &PreviewRow{
				RowKey:      contrib.RowKey,
				FieldValues: map[string]interface{}{},
				FieldErrors: map[string]string{},
			}
			rows[contrib.RowKey] = row
			order = append(order, contrib.RowKey)
		}
		row.SourceDocumentIDs = appendUnique(row.SourceDocumentIDs, docID)
		for field, value := range contrib.FieldValues {
			row.FieldValues[field] = value
			delete(row.FieldErrors, field)
		}
		for field, msg := range contrib.FieldErrors {
			if _, ok := row.FieldValues[field]; !ok {
				row.FieldErrors[field] = msg
			}
		}
		s.finishPreviewRow(row, run, resolved)

		// Report the row's classification at this point of the merge,
		// matching what the persistent path records per document.
		result.Results[len(result.Results)-1].Status = row.Status
	}

	for _, key := range order {
		result.Rows = append(result.Rows, *rows[key])
	}
	return result, nil
}

func (s *MatchServiceImpl) previewDocument(ctx context.Context, run *runState, docID string) (RowResult, *mapping.ResolvedMapping, instance.RowContribution) {
	doc, err := s.Documents.Get(ctx, docID)
	if err != nil {
		return RowResult{
			DocumentID: docID,
			Status:     instance.RowStatusSkipped,
			Message:    fmt.Sprintf("document unavailable: %v", err),
		}, nil, instance.RowContribution{}
	}
	resolved, err := s.resolveFor(ctx, run, doc)
	if err != nil {
		return RowResult{
			DocumentID: docID,
			Status:     instance.RowStatusSkipped,
			Message:    fmt.Sprintf("mapping resolution failed: %v", err),
		}, nil, instance.RowContribution{}
	}
	if len(resolved.Rules) == 0 {
		return RowResult{
			DocumentID: docID,
			Status:     instance.RowStatusSkipped,
			Message:    "no mapping rules resolve for this document",
		}, nil, instance.RowContribution{}
	}

	fields := doc.ExtractedFields
	rowKey := strings.TrimSpace(transform.Stringify(fields[run.rowKeyField]))
	if rowKey == "" || fields[run.rowKeyField] == nil {
		return RowResult{
			DocumentID: docID,
			Status:     instance.RowStatusSkipped,
			Message:    fmt.Sprintf("row key field %q missing or empty", run.rowKeyField),
		}, nil, instance.RowContribution{}
	}

	contrib := s.applyRules(fields, resolved.Rules, docID, rowKey, run.lookupFn)
	rr := RowResult{
		DocumentID:  docID,
		RowKey:      rowKey,
		Status:      instance.RowStatusPending,
		FieldErrors: contrib.FieldErrors,
	}
	return rr, resolved, contrib
}

// finishPreviewRow mirrors validateRow for the in-memory merge
func (s *MatchServiceImpl) finishPreviewRow(row *PreviewRow, run *runState, resolved *mapping.ResolvedMapping) {
	if !run.opts.SkipValidation {
		for _, field := range requiredFields(run.tmpl, resolved) {
			if _, ok := row.FieldErrors[field]; ok {
				continue
			}
			v, ok := row.FieldValues[field]
			if !ok || v == nil || transform.Stringify(v) == "" {
				row.FieldErrors[field] = "required field missing"
			}
		}
		// a later document may have satisfied a previously missing field
		for field := range row.FieldErrors {
			if v, ok := row.FieldValues[field]; ok && v != nil && transform.Stringify(v) != "" {
				delete(row.FieldErrors, field)
			}
		}
	}
	if len(row.FieldErrors) > 0 {
		row.Status = instance.RowStatusInvalid
	} else {
		row.Status = instance.RowStatusValid
	}
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
