package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dzikrimr/tugasmk/config"
	"github.com/dzikrimr/tugasmk/model"
)

// ContractStore is an in-memory store for contracts. The office workflow is
// small enough that drafts only need to survive for the duration of a
// session; older entries are evicted once the cap is reached.
type ContractStore struct {
	contracts    map[string]*model.Contract
	mu           sync.RWMutex
	maxContracts int // 0 = unlimited
}

// NewContractStore creates a store with the configured capacity.
func NewContractStore(cfg *config.StoreConfig) *ContractStore {
	maxContracts := cfg.MaxContracts
	if maxContracts < 0 {
		maxContracts = 0
	}
	return &ContractStore{
		contracts:    make(map[string]*model.Contract),
		maxContracts: maxContracts,
	}
}

func (s *ContractStore) Save(contract *model.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract.UpdatedAt = time.Now()
	s.contracts[contract.ID] = contract

	s.evictIfNeeded()
}

func (s *ContractStore) Get(id string) *model.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contracts[id]
}

func (s *ContractStore) GetByTenant(tenant string) []*model.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Contract
	for _, c := range s.contracts {
		if c.Tenant == tenant {
			result = append(result, c)
		}
	}
	return result
}

func (s *ContractStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contracts, id)
}

func (s *ContractStore) UpdateStatus(id, status string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.contracts[id]; ok {
		c.Status = status
		c.ErrorMsg = errMsg
		c.UpdatedAt = time.Now()
	}
}

// UpdateAnalysis stores the pipeline result and marks the contract completed.
func (s *ContractStore) UpdateAnalysis(id string, pages int, entities model.EntitySet, fields model.FieldMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.contracts[id]; ok {
		c.Pages = pages
		c.Entities = entities
		c.Fields = fields
		c.Status = model.StatusCompleted
		c.ErrorMsg = ""
		c.UpdatedAt = time.Now()
	}
}

// UpdateDraft records the rendered draft location.
func (s *ContractStore) UpdateDraft(id, objectName, draftURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.contracts[id]; ok {
		c.DraftObject = objectName
		c.DraftURL = draftURL
		c.UpdatedAt = time.Now()
	}
}

// evictIfNeeded removes the oldest contracts over the cap. Caller holds the
// lock.
func (s *ContractStore) evictIfNeeded() {
	if s.maxContracts <= 0 || len(s.contracts) <= s.maxContracts {
		return
	}

	contracts := make([]*model.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		contracts = append(contracts, c)
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].CreatedAt.Before(contracts[j].CreatedAt)
	})

	removeCount := len(contracts) - s.maxContracts
	for i := 0; i < removeCount; i++ {
		slog.Info("evicting old contract",
			"contract_id", contracts[i].ID,
			"created_at", contracts[i].CreatedAt,
		)
		delete(s.contracts, contracts[i].ID)
	}
}

// Count returns the number of contracts in the store.
func (s *ContractStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contracts)
}
