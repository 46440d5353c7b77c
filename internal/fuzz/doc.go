// Package fuzztests houses Go fuzz harnesses for the scenario loader: the
// type notation parser and the TOML/YAML file decoders followed by the
// declaration builder. They guard against panics and runaway allocation on
// arbitrary input.
//
// Не делает: генерацию корпусов, запуск матчера.
package fuzztests
