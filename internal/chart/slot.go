package chart

// Slot: именованная область под один живой график. Значение совпадает с id элемента страницы.
type Slot string

const (
	SlotAttackType  Slot = "attackTypeChart"
	SlotFailedLogin Slot = "failedLoginChart"
	SlotProtocol    Slot = "protocolChart"
	SlotService     Slot = "serviceChart"
)

// Slots: фиксированный порядок обхода слотов при обновлении.
var Slots = []Slot{SlotAttackType, SlotFailedLogin, SlotProtocol, SlotService}

func ParseSlot(s string) (Slot, bool) {
	for _, slot := range Slots {
		if string(slot) == s {
			return slot, true
		}
	}
	return "", false
}
