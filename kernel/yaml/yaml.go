/*
Package yaml provides methods to parse kernel.Config
specifications from YAML documents.
*/
package yaml

import (
	"fmt"
	"os"

	"github.com/pbanos/treekernel/kernel"
	yaml "gopkg.in/yaml.v2"
)

/*
ReadConfig takes a slice of bytes with a kernel configuration in YML and
returns the kernel.Config parsed from it or an error.
The YML is expected to be an object containing a kernel property. The value
for this should be an object with optional lambda (a number in (0, 1]),
normalize (a boolean) and sum-method ('sequential' or 'all-pairs')
properties. Missing properties take the values of kernel.DefaultConfig.
*/
func ReadConfig(md []byte) (kernel.Config, error) {
	doc := struct {
		Kernel *struct {
			Lambda    *float64 `yaml:"lambda"`
			Normalize *bool    `yaml:"normalize"`
			SumMethod *string  `yaml:"sum-method"`
		} `yaml:"kernel"`
	}{}
	cfg := kernel.DefaultConfig()
	err := yaml.UnmarshalStrict(md, &doc)
	if err != nil {
		return cfg, fmt.Errorf("parsing yml kernel configuration: %v", err)
	}
	if doc.Kernel == nil {
		return cfg, fmt.Errorf("configuration has no kernel information")
	}
	if doc.Kernel.Lambda != nil {
		cfg.Lambda = *doc.Kernel.Lambda
	}
	if doc.Kernel.Normalize != nil {
		cfg.Normalize = *doc.Kernel.Normalize
	}
	if doc.Kernel.SumMethod != nil {
		cfg.SumMethod, err = kernel.ParseForestSumMethod(*doc.Kernel.SumMethod)
		if err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

/*
ReadConfigFromFile takes a filepath string, reads its contents and uses
ReadConfig to parse it and return a kernel.Config or an error.
If the file indicated by the filepath cannot be opened for reading an error
will be returned.
*/
func ReadConfigFromFile(filepath string) (kernel.Config, error) {
	md, err := os.ReadFile(filepath)
	if err != nil {
		return kernel.DefaultConfig(), fmt.Errorf("reading kernel yml file %s: %v", filepath, err)
	}
	cfg, err := ReadConfig(md)
	if err != nil {
		err = fmt.Errorf("parsing kernel yml file %s: %w", filepath, err)
	}
	return cfg, err
}
