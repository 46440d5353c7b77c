package types

import (
	"fmt"
	"slices"
)

// Receiver records how a method signature was reached.
type Receiver uint8

const (
	// ReceiverNone is a plain function.
	ReceiverNone Receiver = iota
	// ReceiverBound is a method accessed through an instance; its first
	// parameter is already supplied.
	ReceiverBound
	// ReceiverUnbound is a method accessed through its class; the receiver
	// is an ordinary first parameter.
	ReceiverUnbound
)

func (r Receiver) String() string {
	switch r {
	case ReceiverNone:
		return "none"
	case ReceiverBound:
		return "bound"
	case ReceiverUnbound:
		return "unbound"
	default:
		return fmt.Sprintf("Receiver(%d)", r)
	}
}

// CallableInfo stores a callable signature.
type CallableInfo struct {
	Params   []TypeID // declared parameters, receiver included for methods
	Required int      // leading parameters without defaults
	Result   TypeID
	Variadic bool // accepts any number of extra positional arguments
	Receiver Receiver
}

// Callable interns a callable signature. Required counts the parameters that
// have no default and may not exceed len(Params). A NoTypeID result means Any.
func (in *Interner) Callable(info CallableInfo) (TypeID, error) {
	if info.Required < 0 || info.Required > len(info.Params) {
		return NoTypeID, fmt.Errorf("callable: required=%d out of range for %d params", info.Required, len(info.Params))
	}
	if info.Receiver != ReceiverNone && len(info.Params) == 0 {
		return NoTypeID, fmt.Errorf("callable: %s method has no receiver parameter", info.Receiver)
	}
	if info.Result == NoTypeID {
		info.Result = in.builtins.Any
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	for i, p := range info.Params {
		if _, ok := in.lookup(p); !ok {
			return NoTypeID, fmt.Errorf("callable: parameter %d is invalid", i)
		}
	}
	if _, ok := in.lookup(info.Result); !ok {
		return NoTypeID, fmt.Errorf("callable: result is invalid")
	}
	variadic := uint64(0)
	if info.Variadic {
		variadic = 1
	}
	key := listKey('c', uint64(info.Result), info.Params, uint64(info.Required), variadic, uint64(info.Receiver))
	return in.internList(key, func() Type {
		stored := info
		stored.Params = slices.Clone(info.Params)
		in.callables = append(in.callables, stored)
		return Type{Kind: KindCallable, Payload: slotOf(len(in.callables))}
	}), nil
}

// Func is a shortcut for a plain fixed-arity callable with no defaults.
func (in *Interner) Func(params []TypeID, result TypeID) TypeID {
	id, err := in.Callable(CallableInfo{Params: params, Required: len(params), Result: result})
	if err != nil {
		panic(fmt.Errorf("types: %w", err))
	}
	return id
}

// VariadicFunc interns Callable[..., result].
func (in *Interner) VariadicFunc(result TypeID) TypeID {
	id, err := in.Callable(CallableInfo{Result: result, Variadic: true})
	if err != nil {
		panic(fmt.Errorf("types: %w", err))
	}
	return id
}

// CallableInfo returns the signature of a Callable node. The result must not
// be modified.
func (in *Interner) CallableInfo(id TypeID) (*CallableInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookup(id)
	if !ok || tt.Kind != KindCallable || tt.Payload == 0 || int(tt.Payload) >= len(in.callables) {
		return nil, false
	}
	return &in.callables[tt.Payload], true
}

// EffectiveParams drops the receiver of a bound method.
func (c *CallableInfo) EffectiveParams() []TypeID {
	if c.Receiver == ReceiverBound && len(c.Params) > 0 {
		return c.Params[1:]
	}
	return c.Params
}

// EffectiveRequired is Required adjusted for a stripped receiver.
func (c *CallableInfo) EffectiveRequired() int {
	if c.Receiver == ReceiverBound && c.Required > 0 {
		return c.Required - 1
	}
	return c.Required
}
