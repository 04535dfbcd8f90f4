package storage

import "fmt"

// Field names one independently persisted part of a garden.
type Field string

const (
	FieldLifetimeCompletions Field = "lifetime_completions"
	FieldCurrency            Field = "currency"
	FieldInventory           Field = "inventory"
	FieldPlacedItems         Field = "placed_items"
	FieldRewardedTaskIDs     Field = "rewarded_task_ids"
)

// Fields lists every persisted field in a stable order.
var Fields = []Field{
	FieldLifetimeCompletions,
	FieldCurrency,
	FieldInventory,
	FieldPlacedItems,
	FieldRewardedTaskIDs,
}

// GardenState is the durable form of one player's garden.
type GardenState struct {
	Key                 string
	LifetimeCompletions int
	Currency            int
	Inventory           map[string]int
	PlacedItems         []Placement
	RewardedTaskIDs     []string
}

// Placement is one placed decoration row. Color is empty for the default look.
type Placement struct {
	ID         string
	ItemID     string
	X          float64
	Y          float64
	Scale      float64
	Color      string
	StackOrder int64
}

func intValue(field Field, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("save %s: unexpected value type %T", field, value)
	}
}

func inventoryValue(field Field, value any) (map[string]int, error) {
	v, ok := value.(map[string]int)
	if !ok {
		return nil, fmt.Errorf("save %s: unexpected value type %T", field, value)
	}
	return v, nil
}

func placementsValue(field Field, value any) ([]Placement, error) {
	v, ok := value.([]Placement)
	if !ok {
		return nil, fmt.Errorf("save %s: unexpected value type %T", field, value)
	}
	return v, nil
}

func stringsValue(field Field, value any) ([]string, error) {
	v, ok := value.([]string)
	if !ok {
		return nil, fmt.Errorf("save %s: unexpected value type %T", field, value)
	}
	return v, nil
}

// applyField writes value into st after checking its type.
func applyField(st *GardenState, field Field, value any) error {
	switch field {
	case FieldLifetimeCompletions:
		n, err := intValue(field, value)
		if err != nil {
			return err
		}
		st.LifetimeCompletions = n
	case FieldCurrency:
		n, err := intValue(field, value)
		if err != nil {
			return err
		}
		st.Currency = n
	case FieldInventory:
		inv, err := inventoryValue(field, value)
		if err != nil {
			return err
		}
		st.Inventory = make(map[string]int, len(inv))
		for k, q := range inv {
			if q > 0 {
				st.Inventory[k] = q
			}
		}
	case FieldPlacedItems:
		placed, err := placementsValue(field, value)
		if err != nil {
			return err
		}
		st.PlacedItems = append([]Placement(nil), placed...)
	case FieldRewardedTaskIDs:
		ids, err := stringsValue(field, value)
		if err != nil {
			return err
		}
		st.RewardedTaskIDs = append([]string(nil), ids...)
	default:
		return fmt.Errorf("save: unknown field %q", field)
	}
	return nil
}

// Clone returns a deep copy.
func (s *GardenState) Clone() *GardenState {
	if s == nil {
		return nil
	}
	out := *s
	out.Inventory = make(map[string]int, len(s.Inventory))
	for k, v := range s.Inventory {
		out.Inventory[k] = v
	}
	out.PlacedItems = append([]Placement(nil), s.PlacedItems...)
	out.RewardedTaskIDs = append([]string(nil), s.RewardedTaskIDs...)
	return &out
}
