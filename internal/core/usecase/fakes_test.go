package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type documentRepoFake struct {
	mu          sync.Mutex
	docs        map[string]*domain.Document
	createErr   error
	getErr      error
	statusCalls map[string][]statusCall
	sourceInfo  map[string]string
}

func newDocumentRepoFake(docs ...*domain.Document) *documentRepoFake {
	f := &documentRepoFake{
		docs:        make(map[string]*domain.Document),
		statusCalls: make(map[string][]statusCall),
		sourceInfo:  make(map[string]string),
	}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return f
}

func (f *documentRepoFake) Create(_ context.Context, doc *domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *documentRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *documentRepoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls[id] = append(f.statusCalls[id], statusCall{status: status, errMsg: errMessage})
	if doc, ok := f.docs[id]; ok {
		doc.Status = status
		doc.Error = errMessage
	}
	return nil
}

func (f *documentRepoFake) SaveSourceInfo(_ context.Context, id string, pages int, method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sourceInfo[id] = fmt.Sprintf("%d/%s", pages, method)
	return nil
}

func (f *documentRepoFake) calls(id string) []statusCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]statusCall(nil), f.statusCalls[id]...)
}

type caseRepoFake struct {
	mu         sync.Mutex
	records    map[int]domain.CaseRecord
	indexed    map[int]bool
	reserveErr error
	markErr    error
	released   []int
}

func newCaseRepoFake() *caseRepoFake {
	return &caseRepoFake{records: make(map[int]domain.CaseRecord), indexed: make(map[int]bool)}
}

func (f *caseRepoFake) add(rec domain.CaseRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.Position] = rec
	f.indexed[rec.Position] = true
}

func (f *caseRepoFake) Reserve(_ context.Context, rec domain.CaseRecord) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserveErr != nil {
		return 0, f.reserveErr
	}
	position := 0
	for p := range f.records {
		if p+1 > position {
			position = p + 1
		}
	}
	rec.Position = position
	f.records[position] = rec
	return position, nil
}

func (f *caseRepoFake) MarkIndexed(_ context.Context, position int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.indexed[position] = true
	return nil
}

func (f *caseRepoFake) Release(_ context.Context, position int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, position)
	f.released = append(f.released, position)
	return nil
}

func (f *caseRepoFake) GetByPositions(_ context.Context, positions []int) (map[int]domain.CaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]domain.CaseRecord)
	for _, p := range positions {
		if rec, ok := f.records[p]; ok && f.indexed[p] {
			out[p] = rec
		}
	}
	return out, nil
}

func (f *caseRepoFake) GetByDocumentID(_ context.Context, documentID string) (*domain.CaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for p, rec := range f.records {
		if rec.DocumentID == documentID && f.indexed[p] {
			copyRec := rec
			return &copyRec, nil
		}
	}
	return nil, domain.ErrCaseNotFound
}

func (f *caseRepoFake) List(context.Context) ([]domain.CaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CaseRecord
	for p, rec := range f.records {
		if f.indexed[p] {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *caseRepoFake) CountIndexed(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for p := range f.records {
		if f.indexed[p] {
			n++
		}
	}
	return n, nil
}

type storageFake struct {
	mu      sync.Mutex
	objects map[string]string
	err     error
}

func newStorageFake() *storageFake {
	return &storageFake{objects: make(map[string]string)}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = string(raw)
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type queueFake struct {
	documentID string
	err        error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentID = documentID
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

// sourceFake reads the stored object back as the document text.
type sourceFake struct {
	storage *storageFake
	err     error
}

func (f *sourceFake) Extract(ctx context.Context, doc *domain.Document) (domain.SourceText, error) {
	if f.err != nil {
		return domain.SourceText{}, f.err
	}
	rc, err := f.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return domain.SourceText{}, err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return domain.SourceText{}, err
	}
	return domain.SourceText{Text: string(raw), Pages: 1, Method: "text"}, nil
}

type embedderFake struct {
	vectors [][]float32
	err     error
	inputs  []string
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.inputs = append(f.inputs, texts...)
	if f.err != nil {
		return nil, f.err
	}
	if f.vectors != nil {
		return f.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{3, 4}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

type indexFake struct {
	mu        sync.Mutex
	points    map[int][]float32
	hits      []domain.IndexHit
	upsertErr error
	searchErr error
	countErr  error
	deleted   []int
	searched  []float32
	limit     int

	// storeOnErr keeps the point even when upsertErr is returned, like a timed out write.
	storeOnErr bool
}

func newIndexFake() *indexFake {
	return &indexFake{points: make(map[int][]float32)}
}

func (f *indexFake) Upsert(_ context.Context, position int, vector []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		if f.storeOnErr {
			f.points[position] = vector
		}
		return f.upsertErr
	}
	f.points[position] = vector
	return nil
}

func (f *indexFake) Search(_ context.Context, vector []float32, limit int) ([]domain.IndexHit, error) {
	f.searched = vector
	f.limit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *indexFake) Delete(_ context.Context, position int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.points, position)
	f.deleted = append(f.deleted, position)
	return nil
}

func (f *indexFake) Count(context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.points), nil
}
