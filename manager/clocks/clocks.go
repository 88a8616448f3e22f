package clocks

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/foxxorcat/wazero-clampclock/clamp"
)

// Manager 按 guest 模块名保存时钟策略。
// 未登记或已被淘汰的 guest 使用默认策略。
type Manager struct {
	def    *clamp.Clamper
	guests *lru.Cache[string, *clamp.Clamper]
}

// NewManager 创建一个最多保存 size 个 guest 策略的 Manager。
func NewManager(def *clamp.Clamper, size int) (*Manager, error) {
	if def == nil {
		def = clamp.NewClamper(clamp.DefaultConfig())
	}
	guests, err := lru.New[string, *clamp.Clamper](size)
	if err != nil {
		return nil, err
	}
	return &Manager{def: def, guests: guests}, nil
}

// Default 返回默认策略。
func (m *Manager) Default() *clamp.Clamper {
	return m.def
}

// Set 为 guest 设置策略。已存在的策略原地更新，持有它的调用方会立即看到新值。
func (m *Manager) Set(name string, cfg clamp.Config) {
	// PeekOrAdd 是原子的：并发 Set 同一个新名字时只会保留一个 Clamper。
	if prev, ok, _ := m.guests.PeekOrAdd(name, clamp.NewClamper(cfg)); ok {
		prev.Store(cfg)
		m.guests.Get(name)
	}
}

func (m *Manager) Remove(name string) {
	m.guests.Remove(name)
}

// For 返回 guest 使用的策略。
func (m *Manager) For(name string) *clamp.Clamper {
	if c, ok := m.guests.Get(name); ok {
		return c
	}
	return m.def
}

func (m *Manager) Len() int {
	return m.guests.Len()
}
