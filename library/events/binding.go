package events

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// binding ties the inputs of one event to the top-level fields of a struct.
// It is strict in the direction that matters for chain data: every exported
// field must be fed by some input, so a decoded value never silently keeps
// its zero value. Inputs the struct does not declare are ignored. A field
// tagged `abi:"-"` is left alone.
type binding struct {
	// field[i] is the struct field receiving input i, or -1.
	field []int
}

type bindingKey struct {
	event common.Hash
	typ   reflect.Type
}

//nolint:gochecknoglobals // bindings depend only on (event, type)
var bindings sync.Map // bindingKey -> *binding

func bindingFor(ev abi.Event, t reflect.Type) (*binding, error) {
	key := bindingKey{event: ev.ID, typ: t}

	if b, ok := bindings.Load(key); ok {
		return b.(*binding), nil //nolint:forcetypeassert // only *binding is stored
	}

	b, err := bind(ev, t)
	if err != nil {
		return nil, err
	}

	actual, _ := bindings.LoadOrStore(key, b)

	return actual.(*binding), nil //nolint:forcetypeassert // only *binding is stored
}

func bind(ev abi.Event, t reflect.Type) (*binding, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is %s", ErrStructRequired, ev.Name, t.Kind())
	}

	inputs := make(map[string]int, len(ev.Inputs))
	for i, in := range ev.Inputs {
		inputs[strings.ToLower(in.Name)] = i
	}

	b := &binding{field: make([]int, len(ev.Inputs))}
	for i := range b.field {
		b.field[i] = -1
	}

	for i := range t.NumField() {
		sf := t.Field(i)

		name := sf.Tag.Get("abi")
		if !sf.IsExported() || name == "-" {
			continue
		}

		if name == "" {
			name = sf.Name
		}

		in, ok := inputs[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s has no input %q", ErrUnboundField, t.Name(), sf.Name, name)
		}

		b.field[in] = i
	}

	return b, nil
}

// fill stores values, one per event input in input order, into dst.
func (b *binding) fill(dst reflect.Value, ev abi.Event, values []any) error {
	for in, fi := range b.field {
		if fi < 0 {
			continue
		}

		arg := ev.Inputs[in]
		field := dst.Field(fi)

		if values[in] == nil {
			return fmt.Errorf("%w: %s.%s", ErrMissingValue, ev.Name, arg.Name)
		}

		src := reflect.ValueOf(values[in])

		switch {
		case src.Type().AssignableTo(field.Type()):
			field.Set(src)
		case src.Type().ConvertibleTo(field.Type()):
			field.Set(src.Convert(field.Type()))
		default:
			return fmt.Errorf("%w: %s.%s is %v, field wants %v",
				ErrTypeMismatched, ev.Name, arg.Name, src.Type(), field.Type())
		}
	}

	return nil
}
