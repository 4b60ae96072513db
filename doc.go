/*
Package mapreduce is a small in-process map/reduce execution engine.

It runs a user-supplied map function over a list of input files and a
user-supplied reduce function over the resulting partitions, using a
shortest-job-first worker pool to schedule both phases. Unlike a
Hadoop-streaming style framework, there is no wire protocol and no
external process boundary: map and reduce callbacks are plain Go
functions invoked directly against a RunContext.

The traditional "word count" example lives in cmd/wordcount.

This code is licensed under the GPLv3, or at your option any later version.
*/
package mapreduce
