// Copyright 2024 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
Package agent defines the personas taking part in a policy-framework
conversation and the registry that builds them once at startup.

# Overview

Every persona is an [Agent]: a unique name, immutable instructions, an
immutable model configuration and a static set of capabilities exposed to
the completion service as native tools:

  - transfer_to_<persona> for every other persona (intra-turn hand-off)
  - evaluate_framework for every persona except the evaluator
  - update_framework for every persona except the evaluator
  - evaluate_metrics, the only capability of the evaluator persona

Two personas are required by name: the conversational root ("Director")
and the evaluator ("Metrics Evaluator"). [NewRegistry] rejects a persona
list without them, with duplicate names, or with names that collide once
turned into tool identifiers.

# Persona catalogue

[BuiltinPersonas] returns the default catalogue of seventeen personas.
[LoadDefinitions] reads an ordered list from a YAML file:

	personas:
	  - name: Director
	    instructions: You are the leader of this political framework ...
	  - name: Metrics Evaluator
	    instructions: You are responsible for evaluating ...
*/
package agent
