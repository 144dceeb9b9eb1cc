package coi

import "slices"

// A Module is a collection of container options.
// It can be used to export a re-usable group of related providers.
//
// Module options are applied in place of the Module itself, in declaration
// order. Providers in a later module, or registered after it, override
// earlier registrations for the same key. Modules may nest.
//
// Example:
//
//	var StorageModule = coi.Module{
//		coi.Provide(NewPool),
//		coi.Provide(NewRepository, coi.Scoped),
//	}
type Module []ContainerOption

func (Module) applyContainer(*Container) error { return nil }

// WithModule applies the options in a [Module] when calling [NewContainer] or
// [Container.NewScope].
//
// Example:
//
//	c, err := coi.NewContainer(
//		coi.WithModule(StorageModule),
//		coi.Provide(NewService, coi.Scoped),
//	)
func WithModule(m Module) ContainerOption {
	return m
}

// flattenModules splices each Module's options into the option list directly
// after the Module itself, preserving declaration order so the last provider
// registered for a key still wins. The index loop re-reads len(opts) so
// options inserted here are visited too, which expands nested modules.
func flattenModules(opts []ContainerOption) []ContainerOption {
	for i := 0; i < len(opts); i++ {
		if mod, ok := opts[i].(Module); ok {
			opts = slices.Insert(opts, i+1, []ContainerOption(mod)...)
		}
	}

	return opts
}
