// Package forest implements the tree-ensemble regressors used as the
// per-entity black-box model of the forecasting engine.
//
// Two ensemble kinds are supported and selected through Config.Kind:
//
//   - random_forest: CART trees grown on bootstrap samples with exhaustive
//     threshold search over the candidate features.
//   - extra_trees: trees grown on the full sample with one uniformly drawn
//     threshold per candidate feature.
//
// Every tree draws from its own PCG source derived from Config.Seed and the
// tree index, so fitting is reproducible and never touches global state.
package forest
