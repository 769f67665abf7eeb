// Package metrics computes classification metrics for trained SVM models:
// accuracy, the confusion matrix over the union of true and predicted
// classes, per-class precision, recall and F1, and their macro averages.
package metrics
