package hull

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
	lazyHandleType = reflect.TypeOf((*lazyHandle)(nil)).Elem()
)

// constructorInfo holds analyzed constructor metadata
type constructorInfo struct {
	fn       reflect.Value
	fnType   reflect.Type
	params   []paramInfo
	out      reflect.Type // the implementation type
	hasError bool
}

// paramInfo describes a constructor parameter
type paramInfo struct {
	typ   reflect.Type // capability requested, or *Lazy[T] for lazy params
	lazy  bool         // resolved on demand through a Lazy handle
	elem  reflect.Type // T for lazy params
	index int
}

// plan is a compiled, immutable recipe for building one implementation.
// It is safe to invoke from many resolutions at once.
type plan struct {
	capability reflect.Type
	ctor       *constructorInfo
	build      func(r *resolution) (any, error)
}

// analyzeConstructor inspects a candidate constructor for capability.
// A usable constructor is a non-variadic function returning T or (T, error)
// where T is assignable to capability.
func analyzeConstructor(capability reflect.Type, constructor any) (*constructorInfo, error) {
	if constructor == nil {
		return nil, errors.New("constructor is nil")
	}

	fnValue := reflect.ValueOf(constructor)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", fnType)
	}

	if fnValue.IsNil() {
		return nil, fmt.Errorf("%s is a nil function", fnType)
	}

	if fnType.IsVariadic() {
		return nil, fmt.Errorf("%s is variadic", fnType)
	}

	info := &constructorInfo{
		fn:     fnValue,
		fnType: fnType,
	}

	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, fmt.Errorf("%s: second result must be error", fnType)
		}
		info.hasError = true
	default:
		return nil, fmt.Errorf("%s must return (T) or (T, error)", fnType)
	}

	info.out = fnType.Out(0)
	if !info.out.AssignableTo(capability) {
		return nil, fmt.Errorf("%s returns %s which does not implement %s", fnType, info.out, capability)
	}

	for i := 0; i < fnType.NumIn(); i++ {
		info.params = append(info.params, analyzeParam(fnType.In(i), i))
	}

	return info, nil
}

// analyzeParam analyzes a single parameter type
func analyzeParam(t reflect.Type, index int) paramInfo {
	param := paramInfo{
		typ:   t,
		index: index,
	}

	if t.Kind() == reflect.Ptr && t.Implements(lazyHandleType) {
		param.lazy = true
		param.elem = reflect.New(t.Elem()).Interface().(lazyHandle).capability()
	}

	return param
}

// selectConstructor picks the usable candidate with the most parameters.
// Ties go to the candidate supplied first.
func selectConstructor(capability reflect.Type, constructors []any) (*constructorInfo, error) {
	var (
		best    *constructorInfo
		reasons []string
	)

	for i, candidate := range constructors {
		info, err := analyzeConstructor(capability, candidate)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("candidate %d: %v", i, err))
			continue
		}

		if best == nil || len(info.params) > len(best.params) {
			best = info
		}
	}

	if best == nil {
		return nil, newNoConstructorError(capability, reasons)
	}

	return best, nil
}

// compilePlan selects a constructor and closes over its parameter list.
func compilePlan(capability reflect.Type, constructors []any) (*plan, error) {
	info, err := selectConstructor(capability, constructors)
	if err != nil {
		return nil, err
	}

	p := &plan{capability: capability, ctor: info}

	if len(info.params) == 0 {
		p.build = func(*resolution) (any, error) {
			return p.invoke(nil)
		}

		return p, nil
	}

	params := info.params
	p.build = func(r *resolution) (any, error) {
		args := make([]reflect.Value, len(params))

		for i, param := range params {
			if param.lazy {
				args[i] = newLazyValue(param.typ, r.container)
				continue
			}

			dep, err := r.resolve(param.typ, capability)
			if err != nil {
				return nil, err
			}

			if dep == nil {
				args[i] = reflect.Zero(param.typ)
			} else {
				args[i] = reflect.ValueOf(dep)
			}
		}

		return p.invoke(args)
	}

	return p, nil
}

// invoke calls the constructor. A returned error or a panic becomes a
// ConstructionError.
func (p *plan) invoke(args []reflect.Value) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			cause, ok := rec.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", rec)
			}
			instance, err = nil, newConstructionError(p.capability, p.ctor.out, cause)
		}
	}()

	results := p.ctor.fn.Call(args)

	if p.ctor.hasError {
		if errResult := results[1]; !errResult.IsNil() {
			return nil, newConstructionError(p.capability, p.ctor.out, errResult.Interface().(error))
		}
	}

	return results[0].Interface(), nil
}

// eagerDependencies returns the capabilities resolved before the constructor runs.
func (p *plan) eagerDependencies() []reflect.Type {
	deps := make([]reflect.Type, 0, len(p.ctor.params))
	for _, param := range p.ctor.params {
		if !param.lazy {
			deps = append(deps, param.typ)
		}
	}

	return deps
}

// lazyDependencies returns the capabilities injected through Lazy handles.
func (p *plan) lazyDependencies() []reflect.Type {
	var deps []reflect.Type
	for _, param := range p.ctor.params {
		if param.lazy {
			deps = append(deps, param.elem)
		}
	}

	return deps
}
