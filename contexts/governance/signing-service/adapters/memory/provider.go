package memory

import (
	"context"
	"strconv"
	"sync"

	"kvorum/contexts/governance/signing-service/domain/entities"
	domainerrors "kvorum/contexts/governance/signing-service/domain/errors"
)

// FakeProvider simulates the external e-sign gateway for tests and local
// runs. Status transitions are scripted by the test via SetStatus.
type FakeProvider struct {
	mu        sync.Mutex
	sequence  int
	statuses  map[string]entities.StatusReport
	downloads map[string][]byte
	created   []entities.CreateDocumentRequest

	// Unavailable makes every call fail transiently until cleared.
	Unavailable bool
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		statuses:  make(map[string]entities.StatusReport),
		downloads: make(map[string][]byte),
	}
}

func (p *FakeProvider) CreateDocument(_ context.Context, req entities.CreateDocumentRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Unavailable {
		return "", domainerrors.ErrProviderUnavailable
	}
	p.sequence++
	ref := "prov-" + strconv.Itoa(p.sequence)
	p.statuses[ref] = entities.StatusReport{Status: entities.DocumentStatusCreated}
	p.downloads[ref] = []byte("executed decision sheet " + req.SheetID)
	p.created = append(p.created, req)
	return ref, nil
}

func (p *FakeProvider) GetStatus(_ context.Context, providerRef string) (entities.StatusReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Unavailable {
		return entities.StatusReport{}, domainerrors.ErrProviderUnavailable
	}
	report, ok := p.statuses[providerRef]
	if !ok {
		return entities.StatusReport{}, domainerrors.ErrProviderRejected
	}
	return report, nil
}

func (p *FakeProvider) DownloadSigned(_ context.Context, providerRef string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Unavailable {
		return nil, domainerrors.ErrProviderUnavailable
	}
	data, ok := p.downloads[providerRef]
	if !ok {
		return nil, domainerrors.ErrProviderRejected
	}
	return data, nil
}

// SetStatus scripts the provider-side state for a document reference.
func (p *FakeProvider) SetStatus(providerRef string, report entities.StatusReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[providerRef] = report
}

// SetUnavailable toggles transient failure mode.
func (p *FakeProvider) SetUnavailable(down bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Unavailable = down
}

// CreatedRequests returns a copy of every create call the provider saw.
func (p *FakeProvider) CreatedRequests() []entities.CreateDocumentRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entities.CreateDocumentRequest(nil), p.created...)
}
