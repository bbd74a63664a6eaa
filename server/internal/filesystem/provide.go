package filesystem

import (
	"fmt"
	"os"

	"github.com/samber/do"
	"github.com/spf13/afero"
)

// SourceFsName is the injector name of the filesystem rooted at the source
// checkout that contains the working directory.
const SourceFsName = "source_fs"

func Provide(i *do.Injector) {
	provideFs(i)
	provideSourceFs(i)
}

func provideFs(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (afero.Fs, error) {
		return afero.NewOsFs(), nil
	})
}

func provideSourceFs(i *do.Injector) {
	do.ProvideNamed(i, SourceFsName, func(i *do.Injector) (afero.Fs, error) {
		fs, err := do.Invoke[afero.Fs](i)
		if err != nil {
			return nil, err
		}
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root, err := ModuleRoot(fs, wd)
		if err != nil {
			return nil, err
		}

		return afero.NewBasePathFs(fs, root), nil
	})
}
