package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/mediasync/internal/repository/connection"
	"github.com/sharetube/mediasync/pkg/wsrouter"
)

type repo struct {
	instances map[string]map[string]*wsrouter.Conn
	mu        sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		instances: make(map[string]map[string]*wsrouter.Conn),
	}
}

func (r *repo) Add(instanceId, participantId string, conn *wsrouter.Conn) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "instance_id", instanceId, "participant_id", participantId)
	conns, ok := r.instances[instanceId]
	if !ok {
		conns = make(map[string]*wsrouter.Conn)
		r.instances[instanceId] = conns
	}

	if _, exists := conns[participantId]; exists {
		slog.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	conns[participantId] = conn

	return nil
}

// Remove forgets the participant's connection without closing it.
func (r *repo) Remove(instanceId, participantId string) (*wsrouter.Conn, error) {
	funcName := "connection.inmemory.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "instance_id", instanceId, "participant_id", participantId)
	conn, ok := r.instances[instanceId][participantId]
	if !ok {
		slog.Info(funcName, "error", connection.ErrNotFound)
		return nil, connection.ErrNotFound
	}

	delete(r.instances[instanceId], participantId)
	if len(r.instances[instanceId]) == 0 {
		delete(r.instances, instanceId)
	}

	return conn, nil
}

// RemoveInstance forgets every connection of the instance and returns them.
func (r *repo) RemoveInstance(instanceId string) []*wsrouter.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug("connection.inmemory.RemoveInstance", "instance_id", instanceId)
	conns := make([]*wsrouter.Conn, 0, len(r.instances[instanceId]))
	for _, conn := range r.instances[instanceId] {
		conns = append(conns, conn)
	}

	delete(r.instances, instanceId)

	return conns
}

func (r *repo) GetConn(instanceId, participantId string) (*wsrouter.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.instances[instanceId][participantId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

// GetConns returns the connections of the instance except the one of
// excludeId.
func (r *repo) GetConns(instanceId, excludeId string) []*wsrouter.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*wsrouter.Conn, 0, len(r.instances[instanceId]))
	for participantId, conn := range r.instances[instanceId] {
		if participantId == excludeId {
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}

func (r *repo) Count(instanceId string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.instances[instanceId])
}

func (r *repo) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, conns := range r.instances {
		total += len(conns)
	}

	return total
}
