package domain

import (
	"fmt"
	"io"
)

// Class describes a test class produced by discovery. The engine never
// inspects types itself; it only calls the functions held here.
type Class struct {
	Name string
	// New constructs a fresh instance. A nil New yields a nil instance.
	New func() (any, error)
	// Dispose releases an instance. When nil, instances implementing
	// io.Closer are closed.
	Dispose func(instance any) error
	// Methods lists every method of the class in discovered order.
	Methods []*Method
}

// Construct builds a new instance, converting panics into errors. A
// constructor may return a partial instance alongside its error.
func (c *Class) Construct() (instance any, err error) {
	if c.New == nil {
		return nil, nil
	}
	err = Catch(func() error {
		var newErr error
		instance, newErr = c.New()
		return newErr
	})
	return instance, err
}

// Release disposes instance.
func (c *Class) Release(instance any) error {
	return Catch(func() error {
		if c.Dispose != nil {
			return c.Dispose(instance)
		}
		if closer, ok := instance.(io.Closer); ok {
			return closer.Close()
		}
		return nil
	})
}

// Method returns the method with the given name, or nil.
func (c *Class) Method(name string) *Method {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Method describes one invocable method of a class.
type Method struct {
	Name       string
	ParamTypes []string
	Invoke     func(instance any, args []any) (any, error)
}

// Call invokes the method against instance and reports the outcome.
func (m *Method) Call(instance any, args []any) Outcome {
	if m.Invoke == nil {
		return Failed(fmt.Errorf("method %s has no invocation bound", m.Name))
	}
	var value any
	err := Catch(func() error {
		var invokeErr error
		value, invokeErr = m.Invoke(instance, args)
		return invokeErr
	})
	if err != nil {
		return Failed(err)
	}
	return Ok(value)
}
