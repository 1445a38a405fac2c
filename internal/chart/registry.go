package chart

import "fmt"

// Handle: живой объект графика, привязанный к слоту.
type Handle interface {
	Spec() RenderSpec
}

// Factory строит новый график для слота. Вызывается уже после освобождения старого.
type Factory func(slot Slot) (Handle, error)

// destroyer: необязательная способность освободить ресурсы графика.
// Проверяем способность, а не конкретный тип: после частичного сбоя в слоте может лежать что угодно.
type destroyer interface {
	Destroy()
}

// Registry владеет не более чем одним живым графиком на слот.
// Не потокобезопасен: используется только из UI-цикла.
type Registry struct {
	bound map[Slot]Handle
}

func NewRegistry() *Registry {
	return &Registry{bound: make(map[Slot]Handle)}
}

// Bind освобождает текущий график слота и только потом строит новый.
// Если фабрика вернула ошибку, слот остается пустым.
func (r *Registry) Bind(slot Slot, factory Factory) (Handle, error) {
	r.Release(slot)

	h, err := factory(slot)
	if err != nil {
		return nil, fmt.Errorf("bind chart %s: %w", slot, err)
	}
	if h == nil {
		return nil, fmt.Errorf("bind chart %s: factory returned nil handle", slot)
	}
	r.bound[slot] = h
	return h, nil
}

// Release: no-op для пустого слота или значения без Destroy.
func (r *Registry) Release(slot Slot) {
	h, ok := r.bound[slot]
	delete(r.bound, slot)
	if !ok || h == nil {
		return
	}
	if d, ok := h.(destroyer); ok {
		d.Destroy()
	}
}

func (r *Registry) Get(slot Slot) (Handle, bool) {
	h, ok := r.bound[slot]
	return h, ok
}

// Live: число занятых слотов.
func (r *Registry) Live() int {
	return len(r.bound)
}
